// Package main is the mdls CLI entry point: a cobra root command with
// serve, index, and version subcommands.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the root command and wires up its subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mdls",
		Short:        "mdls — a Markdown knowledge-base language server",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
