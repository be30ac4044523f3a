package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"go.arxlang.dev/internal/metrics"
	"go.arxlang.dev/internal/watch"
	arx "go.arxlang.dev/pkg"
)

const stdinName = "<stdin>"

var parseFlags struct {
	format string
	watch  bool
	stats  bool
}

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse Arx source and print its AST",
	Long: `Parse Arx source files and print one S-expression per top-level unit.

Files are parsed concurrently. Without arguments, or with "-", the source is
read from standard input. Diagnostics go to standard error; the command fails
if any file had one.

Examples:
  # Print the AST of a file
  arx parse main.arx

  # JSON output for tooling
  arx parse main.arx lib.arx --format json

  # Re-parse whenever a file changes
  arx parse main.arx --watch

  # Counters of what was parsed
  echo "def f(x) x * 2" | arx parse --stats`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFlags.format, "format", "f", "", "output format: text, json, yaml (default from config)")
	parseCmd.Flags().BoolVarP(&parseFlags.watch, "watch", "w", false, "re-parse files when they change")
	parseCmd.Flags().BoolVar(&parseFlags.stats, "stats", false, "print parse counters to stderr")
}

func runParse(cmd *cobra.Command, args []string) error {
	files := args
	if len(files) == 0 {
		files = []string{"-"}
	}

	format := parseFlags.format
	if format == "" {
		format = cfg.Output.Format
	}

	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if parseFlags.watch && slices.Contains(files, "-") {
		return fmt.Errorf("--watch cannot read from standard input")
	}

	var collector *metrics.Collector
	var observer arx.Observer
	if parseFlags.stats {
		collector = metrics.NewCollector(prometheus.NewRegistry())
		observer = collector
	}

	compiler, err := newCompiler(observer)
	if err != nil {
		return err
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	asts, err := parseAll(ctx, cmd.InOrStdin(), compiler, files)
	if err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	n := 0
	for _, ast := range asts {
		if err := printAST(out, ast, format); err != nil {
			return err
		}

		n += renderDiagnostics(errOut, ast.Err())
	}

	if collector != nil {
		if err := collector.WriteSummary(errOut); err != nil {
			return err
		}
	}

	if parseFlags.watch {
		return watchFiles(ctx, out, errOut, compiler, files, format)
	}

	if n > 0 {
		return errorCount(n)
	}

	return nil
}

// parseAll parses files in order. "-" stands for stdin.
func parseAll(ctx context.Context, stdin io.Reader, compiler *arx.Compiler, files []string) ([]*arx.AST, error) {
	results := make([]*arx.AST, len(files))

	var paths []string
	var index []int
	for i, file := range files {
		if file == "-" {
			results[i] = compiler.Parse(stdinName, stdin)
			continue
		}

		paths = append(paths, file)
		index = append(index, i)
	}

	asts, err := compiler.ParseFiles(ctx, paths)
	if err != nil {
		return nil, err
	}

	for i, ast := range asts {
		results[index[i]] = ast
	}

	return results, nil
}

func printAST(w io.Writer, ast *arx.AST, format string) error {
	switch format {
	case "json":
		return arx.WriteJSON(w, ast)
	case "yaml":
		return arx.WriteYAML(w, ast)
	}

	for _, unit := range ast.Units {
		if _, err := fmt.Fprintln(w, arx.Sprint(unit)); err != nil {
			return err
		}
	}

	return nil
}

func watchFiles(ctx context.Context, out, errOut io.Writer, compiler *arx.Compiler, files []string, format string) error {
	w, err := watch.New(files, watch.DefaultDebounce, logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(errOut, InfoStyle.Render("watching "+strings.Join(files, ", ")))

	var mu sync.Mutex
	return w.Watch(ctx, func(path string) {
		ast, err := compiler.ParseFile(path)
		if err != nil {
			logger.Error("re-parse failed", "file", path, "error", err)
			return
		}

		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintln(errOut, InfoStyle.Render("changed "+path))
		if err := printAST(out, ast, format); err != nil {
			logger.Error("writing AST failed", "error", err)
		}

		renderDiagnostics(errOut, ast.Err())
	})
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return signal.NotifyContext(ctx, os.Interrupt)
}
