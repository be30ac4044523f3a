// Package config loads the arx command configuration from TOML or YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	arx "go.arxlang.dev/pkg"
)

// EnvLogLevel overrides Log.Level when set.
const EnvLogLevel = "ARX_LOG_LEVEL"

type Format int

const (
	FormatTOML Format = iota
	FormatYAML
	FormatAuto
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatAuto:
		return "auto"
	default:
		return "unknown"
	}
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

type ParserConfig struct {
	// MaxDepth bounds expression nesting, 0 means arx.DefaultMaxDepth
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`

	// Operators adds binary operators to the built-in precedence table
	Operators map[string]int `toml:"operators" yaml:"operators"`
}

type OutputConfig struct {
	// Format of `arx parse` output: "text", "json" or "yaml"
	Format string `toml:"format" yaml:"format"`
}

type Config struct {
	// Requires is a semver constraint on the arx version, e.g. ">= 1.5"
	Requires string `toml:"requires" yaml:"requires"`

	Log    LogConfig    `toml:"log" yaml:"log"`
	Parser ParserConfig `toml:"parser" yaml:"parser"`
	Output OutputConfig `toml:"output" yaml:"output"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Parser: ParserConfig{
			MaxDepth: arx.DefaultMaxDepth,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Load reads path on top of the defaults. An empty path only applies the
// defaults and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path, FormatAuto); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string, format Format) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if format == FormatAuto {
		format = detectFormat(path)
	}

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(content, c)
	default:
		_, err = toml.Decode(string(content), c)
	}

	if err != nil {
		return fmt.Errorf("failed to parse %s config file %s: %w", format, path, err)
	}

	return nil
}

func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func (c *Config) applyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

// Validate checks the configuration against the running arx version.
func (c *Config) Validate(version string) error {
	if c.Requires != "" {
		constraint, err := semver.NewConstraint(c.Requires)
		if err != nil {
			return fmt.Errorf("invalid requires constraint %q: %w", c.Requires, err)
		}

		v, err := semver.NewVersion(version)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", version, err)
		}

		if !constraint.Check(v) {
			return fmt.Errorf("configuration requires arx %s, running %s", c.Requires, version)
		}
	}

	if c.Parser.MaxDepth < 0 {
		return fmt.Errorf("parser.max_depth must not be negative, got %d", c.Parser.MaxDepth)
	}

	switch c.Output.Format {
	case "", "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}

	if _, err := c.Operators(); err != nil {
		return err
	}

	return nil
}

// Operators returns the built-in precedence table extended with the configured
// operators.
func (c *Config) Operators() (*arx.PrecedenceTable, error) {
	table := arx.NewPrecedenceTable()
	for op, prec := range c.Parser.Operators {
		if len(op) != 1 {
			return nil, fmt.Errorf("operator %q must be a single character", op)
		}

		if !arx.IsOperatorRune(rune(op[0])) {
			return nil, fmt.Errorf("operator %q is not an operator character", op)
		}

		if err := table.Define(op, prec); err != nil {
			return nil, fmt.Errorf("parser.operators: %w", err)
		}
	}

	return table, nil
}
