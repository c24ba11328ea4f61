// Package config loads the run configuration of tern from a TOML or YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tern-lang/tern/driver"
	"github.com/tern-lang/tern/logging"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Analysis AnalysisConfig `toml:"analysis" yaml:"analysis"`
	Output   OutputConfig   `toml:"output" yaml:"output"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

type AnalysisConfig struct {
	// ContinueOnError lets the parser recover from syntax errors instead of abandoning at the first one.
	ContinueOnError bool   `toml:"continue_on_error" yaml:"continue_on_error"`
	DisableLAC      bool   `toml:"disable_lac" yaml:"disable_lac"`
	Tree            string `toml:"tree" yaml:"tree"`
}

// OutputConfig names the files a parse run writes. Relative paths are resolved against Dir.
type OutputConfig struct {
	Dir        string `toml:"dir" yaml:"dir"`
	TokensLog  string `toml:"tokens_log" yaml:"tokens_log"`
	ErrorsLog  string `toml:"errors_log" yaml:"errors_log"`
	ResultFile string `toml:"result_file" yaml:"result_file"`
}

type LogConfig struct {
	Level   string `toml:"level" yaml:"level"`
	File    string `toml:"file" yaml:"file"`
	Journal bool   `toml:"journal" yaml:"journal"`
}

func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			ContinueOnError: true,
			Tree:            string(driver.TreeAST),
		},
		Output: OutputConfig{
			Dir:        ".",
			TokensLog:  "tokens.log",
			ErrorsLog:  "errors.log",
			ResultFile: "output.txt",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a configuration file over the defaults. The format follows the file extension.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	c := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("failed to decode %v: %w", path, err)
		}
	case ".yaml", ".yml":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(src, c); err != nil {
			return nil, fmt.Errorf("failed to decode %v: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %v (use .toml, .yaml or .yml)", ext)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyDefaults fills the fields a file set to empty strings.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Analysis.Tree == "" {
		c.Analysis.Tree = d.Analysis.Tree
	}
	if c.Output.Dir == "" {
		c.Output.Dir = d.Output.Dir
	}
	if c.Output.TokensLog == "" {
		c.Output.TokensLog = d.Output.TokensLog
	}
	if c.Output.ErrorsLog == "" {
		c.Output.ErrorsLog = d.Output.ErrorsLog
	}
	if c.Output.ResultFile == "" {
		c.Output.ResultFile = d.Output.ResultFile
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

func (c *Config) Validate() error {
	if _, err := driver.ParseTreeKind(c.Analysis.Tree); err != nil {
		return fmt.Errorf("analysis.tree: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Output.TokensLog == c.Output.ErrorsLog ||
		c.Output.TokensLog == c.Output.ResultFile ||
		c.Output.ErrorsLog == c.Output.ResultFile {
		return fmt.Errorf("output files must have distinct names: %v, %v, %v",
			c.Output.TokensLog, c.Output.ErrorsLog, c.Output.ResultFile)
	}
	return nil
}

// OutputPath resolves a file name of OutputConfig against the output directory.
func (c *Config) OutputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}
