package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdnotes/mdls/internal/config"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mdls.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeConfig(t, "server:\n  max_files: 10\n  verbose: true\nmarkdown:\n  filename_resolution: false\n  link_style: absolute\ndiagnostics:\n  broken_links: false\n  missing_frontmatter: true\nschema_version: \"1.0.0\"\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Server.MaxFiles)
	require.True(t, cfg.Server.Verbose)
	require.False(t, cfg.Markdown.FilenameResolution)
	require.Equal(t, config.LinkStyleAbsolute, cfg.Markdown.LinkStyle)
	require.False(t, cfg.Diagnostics.BrokenLinks)
	require.True(t, cfg.Diagnostics.MissingFrontmatter)
}

func TestLoadOrDefaultFallsBackOnMissingFile(t *testing.T) {
	cfg := config.LoadOrDefault(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Equal(t, config.Default(), cfg)
}

// An unparsable schema_version loads successfully with defaults applied
// and does not abort startup.
func TestLoadOrDefaultToleratesBadSchemaVersion(t *testing.T) {
	path := writeConfig(t, "schema_version: \"not-a-version\"\n")
	cfg := config.LoadOrDefault(context.Background(), path)
	require.Equal(t, "not-a-version", cfg.SchemaVersion)
}

func TestApplyInitializationOptionsOverlay(t *testing.T) {
	cfg := config.Default()
	style := config.LinkStyleFilename
	enabled := false
	merged := config.ApplyInitializationOptions(cfg, config.InitializationOptions{
		LinkStyle:          &style,
		FilenameResolution: &enabled,
	})
	require.Equal(t, config.LinkStyleFilename, merged.Markdown.LinkStyle)
	require.False(t, merged.Markdown.FilenameResolution)
	require.Equal(t, cfg.Diagnostics, merged.Diagnostics)
}
