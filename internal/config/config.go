// Package config loads the server's YAML configuration file, falling back
// to documented defaults when the file is absent or invalid.
package config

import (
	"context"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/mdnotes/mdls/internal/mdlog"
)

// LinkStyle selects how a workspace-relative link target is rendered back
// to a client (the resolver itself always accepts all three forms).
type LinkStyle string

const (
	LinkStyleFilename LinkStyle = "filename"
	LinkStyleRelative LinkStyle = "relative"
	LinkStyleAbsolute LinkStyle = "absolute"
)

// ServerConfig holds general server behavior knobs.
type ServerConfig struct {
	MaxFiles int  `yaml:"max_files"`
	Verbose  bool `yaml:"verbose"`
}

// MarkdownConfig holds link-resolution behavior knobs.
type MarkdownConfig struct {
	FilenameResolution bool      `yaml:"filename_resolution"`
	LinkStyle          LinkStyle `yaml:"link_style"`
}

// DiagnosticsConfig gates the supplemented diagnostic categories.
type DiagnosticsConfig struct {
	BrokenLinks        bool `yaml:"broken_links"`
	MissingFrontmatter bool `yaml:"missing_frontmatter"`
}

// Config is the full server configuration, loaded from YAML and optionally
// overlaid by an `initialize` request's initializationOptions.
type Config struct {
	Server        ServerConfig      `yaml:"server"`
	Markdown      MarkdownConfig    `yaml:"markdown"`
	Diagnostics   DiagnosticsConfig `yaml:"diagnostics"`
	SchemaVersion string            `yaml:"schema_version"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server:   ServerConfig{MaxFiles: 0, Verbose: false},
		Markdown: MarkdownConfig{FilenameResolution: true, LinkStyle: LinkStyleRelative},
		Diagnostics: DiagnosticsConfig{
			BrokenLinks:        true,
			MissingFrontmatter: false,
		},
		SchemaVersion: "1.0.0",
	}
}

// Load reads and unmarshals the YAML config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault reads path, logging at Info and returning Default() if the
// file is missing or malformed, so a missing or broken config file never
// prevents the server from starting.
func LoadOrDefault(ctx context.Context, path string) Config {
	cfg, err := Load(path)
	if err != nil {
		mdlog.FromContext(ctx).Info("config file unavailable, using defaults", "path", path, "error", err)
		return Default()
	}
	validateSchemaVersion(ctx, cfg.SchemaVersion)
	return cfg
}

// validateSchemaVersion parses SchemaVersion with semver, logging a Warn
// (never aborting startup) when it is unparsable or a major-version
// mismatch against the version this module understands.
func validateSchemaVersion(ctx context.Context, raw string) {
	v, err := semver.NewVersion(raw)
	if err != nil {
		mdlog.FromContext(ctx).Warn("schema_version is not a valid semantic version, using defaults for unrecognized fields", "schema_version", raw, "error", err)
		return
	}
	supported := semver.MustParse(Default().SchemaVersion)
	if v.Major() != supported.Major() {
		mdlog.FromContext(ctx).Warn("schema_version major version mismatch, using defaults for unrecognized fields", "schema_version", raw, "supported", supported.String())
	}
}

// InitializationOptions is the subset of `initialize`'s
// initializationOptions this server understands, overlaid onto file config.
type InitializationOptions struct {
	LinkStyle           *LinkStyle `json:"linkStyle,omitempty"`
	FilenameResolution  *bool      `json:"filenameResolution,omitempty"`
	BrokenLinks         *bool      `json:"brokenLinks,omitempty"`
	MissingFrontmatter  *bool      `json:"missingFrontmatter,omitempty"`
}

// ApplyInitializationOptions overlays non-nil fields of opts onto cfg,
// returning the merged configuration. File config is the base layer;
// initializationOptions is the overlay, per the LSP convention.
func ApplyInitializationOptions(cfg Config, opts InitializationOptions) Config {
	if opts.LinkStyle != nil {
		cfg.Markdown.LinkStyle = *opts.LinkStyle
	}
	if opts.FilenameResolution != nil {
		cfg.Markdown.FilenameResolution = *opts.FilenameResolution
	}
	if opts.BrokenLinks != nil {
		cfg.Diagnostics.BrokenLinks = *opts.BrokenLinks
	}
	if opts.MissingFrontmatter != nil {
		cfg.Diagnostics.MissingFrontmatter = *opts.MissingFrontmatter
	}
	return cfg
}
