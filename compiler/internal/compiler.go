package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/xiaobogaga/minijava/compiler/internal/ast"
	"github.com/xiaobogaga/minijava/compiler/internal/codegen"
	"github.com/xiaobogaga/minijava/compiler/internal/semantic"
)

type Option func(*config)

type config struct {
	verbose     io.Writer
	diagnostics io.Writer
}

// WithVerbose reports each compilation stage to w.
func WithVerbose(w io.Writer) Option {
	return func(c *config) {
		c.verbose = w
	}
}

func WithDiagnostics(w io.Writer) Option {
	return func(c *config) {
		c.diagnostics = w
	}
}

func newConfig(opts []Option) *config {
	c := &config{verbose: io.Discard, diagnostics: os.Stderr}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) progress(msg string) {
	fmt.Fprintln(c.verbose, "compiler: "+msg)
}

// CompileFile loads the syntax tree stored at path and writes its IR to out.
func CompileFile(path string, out io.Writer, opts ...Option) error {
	c := newConfig(opts)
	c.progress("start loading syntax tree at path: " + path)
	program, err := ast.DecodeFile(path)
	if err != nil {
		return err
	}
	return compile(c, program, out)
}

// Compile checks program and writes its IR to out. Nothing is written when
// the program has a semantic error.
func Compile(program *ast.Program, out io.Writer, opts ...Option) error {
	return compile(newConfig(opts), program, out)
}

func compile(c *config, program *ast.Program, out io.Writer) error {
	c.progress("start building symbol table")
	table, err := semantic.Build(program)
	if err != nil {
		return err
	}
	c.progress("start generate codes")
	gen, err := codegen.New(table, codegen.WithDiagnostics(c.diagnostics))
	if err != nil {
		return err
	}
	module, err := gen.Generate(program)
	if err != nil {
		return err
	}
	c.progress("start writing ir")
	_, err = module.WriteTo(out)
	return err
}

// SymbolsFile builds the symbol table of the tree stored at path and dumps it
// to out.
func SymbolsFile(path string, out io.Writer, opts ...Option) error {
	c := newConfig(opts)
	c.progress("start loading syntax tree at path: " + path)
	program, err := ast.DecodeFile(path)
	if err != nil {
		return err
	}
	c.progress("start building symbol table")
	table, err := semantic.Build(program)
	if err != nil {
		return err
	}
	return table.Dump(out)
}
