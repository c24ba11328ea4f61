package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tern-lang/tern/config"
	"github.com/tern-lang/tern/diag"
	"github.com/tern-lang/tern/driver"
	"github.com/tern-lang/tern/driver/parser"
	"github.com/tern-lang/tern/lang/basic"
)

var errAbandoned = errors.New("the analysis was abandoned")

var parseFlags = struct {
	tree            *string
	continueOnError *bool
	disableLAC      *bool
	json            *bool
	outDir          *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse [source file path]",
		Short: "Analyze a source and report the result",
		Example: `  tern parse prog.bas
  cat prog.bas | tern parse --tree cst --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParse,
	}
	parseFlags.tree = cmd.Flags().String("tree", "", "syntax tree to build: none, cst or ast (default ast)")
	parseFlags.continueOnError = cmd.Flags().Bool("continue-on-error", true, "recover from syntax errors instead of stopping at the first one")
	parseFlags.disableLAC = cmd.Flags().Bool("disable-lac", false, "disable LAC (lookahead correction)")
	parseFlags.json = cmd.Flags().Bool("json", false, "print the syntax tree as JSON")
	parseFlags.outDir = cmd.Flags().StringP("out-dir", "o", "", "directory receiving the token log, the error log and the result file")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("tree") {
		c.Analysis.Tree = *parseFlags.tree
	}
	if flags.Changed("continue-on-error") {
		c.Analysis.ContinueOnError = *parseFlags.continueOnError
	}
	if flags.Changed("disable-lac") {
		c.Analysis.DisableLAC = *parseFlags.disableLAC
	}
	if flags.Changed("out-dir") {
		c.Output.Dir = *parseFlags.outDir
	}
	err = c.Validate()
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

	h := diag.NewHandler(diag.ContinueOnError(c.Analysis.ContinueOnError), diag.Logger(logger))

	tree, err := driver.ParseTreeKind(c.Analysis.Tree)
	if err != nil {
		return err
	}
	opts := []driver.Option{
		driver.WithEvaluators(basic.Evaluators()),
		driver.WithTree(tree),
		driver.WithLogger(logger),
	}
	if c.Analysis.DisableLAC {
		opts = append(opts, driver.WithoutLAC())
	}

	res, err := driver.Run(cmd.Context(), gram, src, h, opts...)
	if err != nil {
		return err
	}

	err = writeOutputs(c, res)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, renderSummary(res))
	if res.Tree != nil && res.Status != parser.StatusAbandoned {
		err = writeTree(w, res.Tree, *parseFlags.json)
		if err != nil {
			return err
		}
	}

	if res.Status == parser.StatusAbandoned {
		return errAbandoned
	}
	return nil
}

// writeOutputs writes the token log, the error log and the result file of a run.
func writeOutputs(c *config.Config, res *driver.Result) error {
	err := os.MkdirAll(c.Output.Dir, 0755)
	if err != nil {
		return fmt.Errorf("Cannot create the output directory %s: %w", c.Output.Dir, err)
	}

	writers := []struct {
		name  string
		write func(w io.Writer) error
	}{
		{
			name: c.Output.TokensLog,
			write: func(w io.Writer) error {
				return driver.WriteTokenLog(w, res.Tokens)
			},
		},
		{
			name: c.Output.ErrorsLog,
			write: func(w io.Writer) error {
				_, err := res.Summary.WriteTo(w)
				return err
			},
		},
		{
			name: c.Output.ResultFile,
			write: func(w io.Writer) error {
				return driver.WriteResult(w, res)
			},
		},
	}
	for _, e := range writers {
		err := writeFile(c.OutputPath(e.name), e.write)
		if err != nil {
			return err
		}
	}

	return nil
}

func writeFile(path string, write func(w io.Writer) error) (retErr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("Cannot create %s: %w", path, err)
	}
	defer func() {
		err := f.Close()
		if retErr == nil {
			retErr = err
		}
	}()

	return write(f)
}

func writeTree(w io.Writer, tree *parser.Node, asJSON bool) error {
	if !asJSON {
		parser.PrintTree(w, tree)
		return nil
	}
	b, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
