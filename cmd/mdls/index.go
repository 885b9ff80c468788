package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdnotes/mdls/internal/config"
	"github.com/mdnotes/mdls/internal/resolve"
	"github.com/mdnotes/mdls/internal/workspace"
)

func newIndexCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "index DIR",
		Short: "Crawl DIR and print a workspace summary (document, link-reference, broken-link counts)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			cfg := config.Default()
			if configPath != "" {
				cfg = config.LoadOrDefault(cmd.Context(), configPath)
			}

			store := workspace.NewDocumentStore()
			if err := workspace.LoadWorkspace(cmd.Context(), root, store); err != nil {
				return err
			}

			rootURI := workspace.PathToURI(root)
			refs := store.IterReferencesWithURI()
			refCount, brokenCount := 0, 0
			for _, rd := range refs {
				target, ok := rd.Ref.LinkTarget()
				if !ok {
					continue
				}
				refCount++
				uri, err := resolve.Resolve(target, rd.URI, rootURI, store, cfg)
				if err != nil || store.GetDocument(uri) == nil {
					brokenCount++
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "documents: %d\n", store.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "link references: %d\n", refCount)
			fmt.Fprintf(cmd.OutOrStdout(), "broken links: %d\n", brokenCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the mdls YAML config file")
	return cmd
}
