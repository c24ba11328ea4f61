package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tern-lang/tern/lang/basic"
	"github.com/tern-lang/tern/tester"
)

func init() {
	cmd := &cobra.Command{
		Use:     "test <test file path>|<test directory path>",
		Short:   "Run analysis test cases against the basic grammar",
		Example: `  tern test testdata`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	cg, err := basic.Grammar()
	if err != nil {
		return fmt.Errorf("Cannot compile the grammar: %w", err)
	}

	var cs []*tester.TestCaseWithMetadata
	{
		cs = tester.ListTestCases(args[0])
		errOccurred := false
		for _, c := range cs {
			if c.Error != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to read a test case or a directory: %v\n%v\n", c.FilePath, c.Error)
				errOccurred = true
			}
		}
		if errOccurred {
			return errors.New("Cannot run test")
		}
	}

	t := &tester.Tester{
		Grammar:    cg,
		Evaluators: basic.Evaluators(),
		Cases:      cs,
	}
	rs := t.Run(cmd.Context())
	testFailed := false
	for _, r := range rs {
		fmt.Fprintln(cmd.OutOrStdout(), r)
		if r.Error != nil {
			testFailed = true
		}
	}
	if testFailed {
		return errors.New("Test failed")
	}
	return nil
}
