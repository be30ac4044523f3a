package main

import (
	"github.com/spf13/cobra"

	"go.arxlang.dev/internal/shell"
	arx "go.arxlang.dev/pkg"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell",
	Long: `Start an interactive shell. Every line is parsed and checked against the
definitions of the previous lines, so operators defined with "def binary"
stay available. Type :help for the shell commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, err := cfg.Operators()
		if err != nil {
			return err
		}

		// The shell owns the terminal, so the session does not log.
		session := shell.NewSession(arx.CompilerConfig{
			Operators: ops,
			MaxDepth:  cfg.Parser.MaxDepth,
		})

		return shell.Run(session, Version, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
