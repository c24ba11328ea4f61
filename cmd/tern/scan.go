package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tern-lang/tern/diag"
	"github.com/tern-lang/tern/driver"
	"github.com/tern-lang/tern/driver/lexer"
	"github.com/tern-lang/tern/lang/basic"
)

func init() {
	cmd := &cobra.Command{
		Use:     "scan [source file path]",
		Short:   "List the tokens of a source",
		Example: `  cat src | tern scan`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runScan,
	}
	rootCmd.AddCommand(cmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(c, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	src, err := openSource(args)
	if err != nil {
		return err
	}
	defer src.Close()

	gram, err := basic.Grammar()
	if err != nil {
		return err
	}

	h := diag.NewHandler(diag.Logger(logger))
	toks, err := driver.Tokenize(gram, src, h, driver.WithEvaluators(basic.Evaluators()))
	if err != nil {
		return err
	}

	err = writeScanResult(cmd.OutOrStdout(), toks)
	if err != nil {
		return err
	}
	for _, d := range h.Diagnostics() {
		fmt.Fprintln(cmd.ErrOrStderr(), d)
	}

	return nil
}

// writeScanResult lists the tokens followed by the number of lexemes read.
func writeScanResult(w io.Writer, toks []*lexer.Token) error {
	err := driver.WriteTokenLog(w, toks)
	if err != nil {
		return err
	}
	count := 0
	for _, tok := range toks {
		if !tok.EOF {
			count++
		}
	}
	_, err = fmt.Fprintf(w, "lexemes: %v\n", count)
	return err
}

func openSource(args []string) (io.ReadCloser, error) {
	if len(args) == 0 {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("Cannot open the source file %s: %w", args[0], err)
	}
	return f, nil
}
