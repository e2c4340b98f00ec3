package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags.
	Version = "0.1.0-dev"

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "dlc",
	Short: "Datalog compiler core driver",
	Long: `dlc loads an AST fixture, runs the transformer pipeline over it
(component instantiation, alias resolution, minimisation, inlining, the
Magic-Set transformation, and the rest of the rewrite corpus), and lowers
the result to a RAM program.

This is a driver over the compiler core, not a full Datalog toolchain:
there is no lexer/parser here, so programs are supplied as YAML AST
fixtures rather than Datalog source files.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML global-configuration file")
}
