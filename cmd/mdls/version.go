package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdnotes/mdls/internal/lsp"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), lsp.Version)
			return nil
		},
	}
}
