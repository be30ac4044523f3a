package arx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/llir/llvm/ir"
	"golang.org/x/sync/errgroup"
)

// Version of the Arx language front-end.
const Version = "1.5.0"

// Observer is notified after every parse and code generation run.
type Observer interface {
	ObserveParse(ast *AST, elapsed time.Duration)
	ObserveCodegen(errs int, elapsed time.Duration)
}

type CompilerConfig struct {
	// Operators seeds the precedence table of every parse. Each parse works
	// on its own clone. Nil means the built-in operators.
	Operators *PrecedenceTable
	MaxDepth  int
	Logger    *slog.Logger
	Observer  Observer
}

type Compiler struct {
	config CompilerConfig
	logger *slog.Logger
}

func NewCompiler(config CompilerConfig) *Compiler {
	if config.Operators == nil {
		config.Operators = NewPrecedenceTable()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Compiler{
		config: config,
		logger: logger,
	}
}

// NewParser returns a parser configured like the ones the compiler uses.
func (c *Compiler) NewParser(tokenizer Tokenizer) *Parser {
	return NewParser(tokenizer,
		WithPrecedence(c.config.Operators.Clone()),
		WithMaxDepth(c.config.MaxDepth),
		WithLogger(c.logger),
	)
}

func (c *Compiler) Parse(filename string, reader io.Reader) *AST {
	lexer := NewLexerFromReader(filename, reader)
	return c.run(c.NewParser(lexer))
}

func (c *Compiler) ParseFile(filename string) (*AST, error) {
	lexer, err := NewLexer(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	return c.run(c.NewParser(lexer)), nil
}

// ParseFiles parses every file concurrently. The results keep the order of
// filenames. The first file that cannot be read cancels the remaining work.
func (c *Compiler) ParseFiles(ctx context.Context, filenames []string) ([]*AST, error) {
	results := make([]*AST, len(filenames))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, filename := range filenames {
		i, filename := i, filename
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ast, err := c.ParseFile(filename)
			if err != nil {
				return err
			}

			results[i] = ast
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (c *Compiler) run(p *Parser) *AST {
	start := time.Now()
	ast := p.Run()
	elapsed := time.Since(start)

	c.logger.Info("parsed",
		"file", ast.Filename,
		"units", len(ast.Units),
		"errors", ast.Errors.Len(),
		"elapsed", elapsed,
	)

	if c.config.Observer != nil {
		c.config.Observer.ObserveParse(ast, elapsed)
	}

	return ast
}

// Check resolves the names of a parsed AST.
func (c *Compiler) Check(ast *AST) error {
	return NewContextAnalyzer(NewGlobalSymbolTable()).Do(ast).Err()
}

// Generate checks ast and lowers it to LLVM IR.
func (c *Compiler) Generate(ast *AST) (*ir.Module, error) {
	if err := c.Check(ast); err != nil {
		c.observeCodegen(err, 0)
		return nil, err
	}

	start := time.Now()
	mod, err := NewLLVMGenerator(ast).Do()
	c.observeCodegen(err, time.Since(start))

	if err != nil {
		return nil, err
	}

	return mod, nil
}

// Compile parses, checks and lowers the source read from reader. The AST is
// returned even when compilation fails so callers can report diagnostics.
func (c *Compiler) Compile(filename string, reader io.Reader) (*ir.Module, *AST, error) {
	ast := c.Parse(filename, reader)
	if err := ast.Err(); err != nil {
		return nil, ast, err
	}

	mod, err := c.Generate(ast)
	return mod, ast, err
}

func (c *Compiler) observeCodegen(err error, elapsed time.Duration) {
	n := 0
	if errs, ok := err.(CompileErrors); ok {
		n = len(errs)
	} else if err != nil {
		n = 1
	}

	if n > 0 {
		c.logger.Warn("code generation failed", "errors", n)
	}

	if c.config.Observer != nil {
		c.config.Observer.ObserveCodegen(n, elapsed)
	}
}
