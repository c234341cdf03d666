package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xiaobogaga/minijava/compiler/internal"
)

// symbols: dump the symbol table
var SymbolsCmd = &cobra.Command{
	Use:   "symbols [tree.json]",
	Short: "Print classes, field offsets and vtable slots of a MiniJava syntax tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return internal.SymbolsFile(args[0], cmd.OutOrStdout(), options(cmd)...)
	},
}
