package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var irFlags struct {
	output string
}

var irCmd = &cobra.Command{
	Use:   "ir [file]",
	Short: "Compile Arx source to LLVM IR",
	Long: `Parse, check and lower one Arx source file to textual LLVM IR.

Without a file, or with "-", the source is read from standard input.

Examples:
  # Print the module
  arx ir main.arx

  # Write it to a file
  arx ir main.arx --output main.ll`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIR,
}

func init() {
	rootCmd.AddCommand(irCmd)

	irCmd.Flags().StringVarP(&irFlags.output, "output", "o", "", "write the IR to this file instead of stdout")
}

func runIR(cmd *cobra.Command, args []string) error {
	compiler, err := newCompiler(nil)
	if err != nil {
		return err
	}

	filename := stdinName
	var reader io.Reader = cmd.InOrStdin()

	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		defer f.Close()

		filename = args[0]
		reader = f
	}

	mod, _, err := compiler.Compile(filename, reader)
	if err != nil {
		return errorCount(renderDiagnostics(cmd.ErrOrStderr(), err))
	}

	if irFlags.output == "" || irFlags.output == "-" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), mod.String())
		return err
	}

	if err := os.WriteFile(irFlags.output, []byte(mod.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", irFlags.output, err)
	}

	logger.Info("wrote IR", "file", irFlags.output, "functions", len(mod.Funcs))
	return nil
}
