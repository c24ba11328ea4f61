package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tern-lang/tern/config"
	"github.com/tern-lang/tern/logging"
)

var rootFlags = struct {
	config   *string
	logLevel *string
	logFile  *string
	journal  *bool
}{}

var rootCmd = &cobra.Command{
	Use:   "tern",
	Short: "Scan and parse programs of the basic language",
	Long: `tern runs a table-driven LALR(1) front end over a source file:
- scan lists the tokens of a source.
- parse analyzes a source, recovering from errors, and reports the result.
- describe prints the states and conflicts of the grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootFlags.config = rootCmd.PersistentFlags().StringP("config", "c", "", "configuration file path (.toml, .yaml or .yml)")
	rootFlags.logLevel = rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (default info)")
	rootFlags.logFile = rootCmd.PersistentFlags().String("log-file", "", "file receiving the run log at debug level")
	rootFlags.journal = rootCmd.PersistentFlags().Bool("journal", false, "send the run log to the systemd journal as well")
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// loadConfig reads the configuration file when one is given and applies the root flags over it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.Default()
	if *rootFlags.config != "" {
		var err error
		c, err = config.Load(*rootFlags.config)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Log.Level = *rootFlags.logLevel
	}
	if flags.Changed("log-file") {
		c.Log.File = *rootFlags.logFile
	}
	if flags.Changed("journal") {
		c.Log.Journal = *rootFlags.journal
	}

	return c, nil
}

func newLogger(c *config.Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(logging.Options{
		Level:   level,
		Writer:  w,
		File:    c.Log.File,
		Journal: c.Log.Journal,
	})
}
