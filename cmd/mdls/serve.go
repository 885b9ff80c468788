package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mdnotes/mdls/internal/config"
	"github.com/mdnotes/mdls/internal/lsp"
	"github.com/mdnotes/mdls/internal/mdlog"
)

func newServeCmd() *cobra.Command {
	var root, configPath, logPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := mdlog.New(mdlog.Options{Path: logPath, JSON: true})
			if err != nil {
				return err
			}
			cfg := config.Default()
			if configPath != "" {
				cfg = config.LoadOrDefault(cmd.Context(), configPath)
			}
			server := lsp.NewServer(os.Stdin, os.Stdout, cfg, logger)
			if root != "" {
				if err := server.PreloadWorkspaceRoot(root); err != nil {
					return err
				}
			}
			return server.Run()
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "workspace root (normally negotiated via initialize instead)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to the mdls YAML config file")
	cmd.Flags().StringVar(&logPath, "log", "", "path to the sidecar log file (discarded if unset)")
	return cmd
}
