package cmd

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mjc",
	Short: "mjc compiles MiniJava syntax trees to LLVM IR",
	Long: `mjc checks a parsed MiniJava program and lowers it to LLVM IR.

The program is read as a JSON syntax tree produced by a MiniJava parser.

Commands:
  build    Compile a syntax tree into an .ll file
  symbols  Print the symbol table of a syntax tree
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "report every compilation stage on stderr")

	rootCmd.AddCommand(BuildCmd, SymbolsCmd)
}
