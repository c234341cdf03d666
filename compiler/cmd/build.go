package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiaobogaga/minijava/compiler/internal"
)

var outPath string

// build: compile a syntax tree to LLVM IR
var BuildCmd = &cobra.Command{
	Use:   "build [tree.json]",
	Short: "Compile a MiniJava syntax tree into LLVM IR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		treePath := args[0]
		target := outPath
		if target == "" {
			target = strings.TrimSuffix(treePath, filepath.Ext(treePath)) + ".ll"
		}
		var out io.Writer = cmd.OutOrStdout()
		if target != "-" {
			f, err := os.Create(target)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		err := internal.CompileFile(treePath, out, options(cmd)...)
		if err != nil && target != "-" {
			// Do not leave a truncated .ll behind.
			os.Remove(target)
		}
		return err
	},
}

func options(cmd *cobra.Command) []internal.Option {
	opts := []internal.Option{internal.WithDiagnostics(cmd.ErrOrStderr())}
	if verbose {
		opts = append(opts, internal.WithVerbose(cmd.ErrOrStderr()))
	}
	return opts
}

func init() {
	BuildCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, - for stdout (default: tree path with .ll extension)")
}
