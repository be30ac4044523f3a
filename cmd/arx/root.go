package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"go.arxlang.dev/internal/config"
	"go.arxlang.dev/internal/logging"
	arx "go.arxlang.dev/pkg"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	cfg    = config.Default()
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "arx",
	Short: "Arx - parser and LLVM IR front-end for the Arx language",
	Long: `Arx parses programs written in the Arx language, a small expression
language with user-defined operators, and lowers them to LLVM IR.

Every command reads its configuration from --config (TOML or YAML). The
configuration can add binary operators, limit the nesting depth and pick
the default output format.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.ErrOrStderr())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (.toml, .yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads the configuration and builds the logger shared by every
// command of this run.
func setup(stderr io.Writer) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if err := c.Validate(arx.Version); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := c.Log.Level
	if verbose {
		level = "debug"
	}

	l, err := logging.New(logging.Config{
		Level:  level,
		Format: c.Log.Format,
		Writer: stderr,
	})
	if err != nil {
		return err
	}

	cfg = c
	logger = l.With("run", uuid.NewString())

	logger.Debug("configuration loaded", "file", cfgFile, "max_depth", c.Parser.MaxDepth)
	return nil
}

func newCompiler(observer arx.Observer) (*arx.Compiler, error) {
	ops, err := cfg.Operators()
	if err != nil {
		return nil, err
	}

	return arx.NewCompiler(arx.CompilerConfig{
		Operators: ops,
		MaxDepth:  cfg.Parser.MaxDepth,
		Logger:    logger,
		Observer:  observer,
	}), nil
}
