// Package resolve implements the link-resolution algebra: turning an
// opaque link target string into a resolved document URI, and matching a
// header fragment string to a concrete header's content.
package resolve

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/mdnotes/mdls/internal/config"
	"github.com/mdnotes/mdls/internal/document"
	"github.com/mdnotes/mdls/internal/workspace"
)

// ErrResolutionFailed is the sentinel every ResolutionError wraps, so
// callers can test failure with errors.Is(err, ErrResolutionFailed)
// without caring about the concrete reason.
var ErrResolutionFailed = errors.New("link resolution failed")

// ResolutionError reports why target could not be resolved to a document.
type ResolutionError struct {
	Target string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %s", e.Target, e.Reason)
}

func (e *ResolutionError) Is(target error) bool { return target == ErrResolutionFailed }

// Resolve turns target into the URI of an open/indexed document.
//
// Algorithm, in order:
//  1. Path syntax detection: target starts with "/", "./", "../", or
//     contains "/" is treated as a path. An absolute path requires
//     workspaceRoot and is joined to it; any other path form is joined to
//     sourceURI's parent directory and canonicalized.
//  2. Filename resolution, if cfg.Markdown.FilenameResolution: strip a
//     trailing ".md", normalize, and linearly scan store for the first
//     document whose normalized filename stem matches.
//  3. Fallback: treat target as a relative path from sourceURI's parent.
func Resolve(target string, sourceURI string, workspaceRoot string, store *workspace.DocumentStore, cfg config.Config) (string, error) {
	if isPathSyntax(target) {
		return resolvePath(target, sourceURI, workspaceRoot)
	}

	if cfg.Markdown.FilenameResolution {
		if uri, ok := resolveFilename(target, store); ok {
			return uri, nil
		}
	}

	return resolvePath(target, sourceURI, workspaceRoot)
}

func isPathSyntax(target string) bool {
	return strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "./") ||
		strings.HasPrefix(target, "../") ||
		strings.Contains(target, "/")
}

func resolvePath(target string, sourceURI string, workspaceRoot string) (string, error) {
	if strings.HasPrefix(target, "/") {
		if workspaceRoot == "" {
			return "", &ResolutionError{Target: target, Reason: "absolute link target requires a workspace root"}
		}
		return workspace.PathToURI(path.Join(workspace.URIToPath(workspaceRoot), target)), nil
	}

	sourceDir := path.Dir(workspace.URIToPath(sourceURI))
	joined := path.Join(sourceDir, target)
	return workspace.PathToURI(joined), nil
}

func resolveFilename(target string, store *workspace.DocumentStore) (string, bool) {
	stem := strings.TrimSuffix(target, ".md")
	normTarget := NormalizeFilename(stem)

	var found string
	var ok bool
	store.IterDocuments(func(uri string, _ *document.Document) {
		if ok {
			return
		}
		stemURI := strings.TrimSuffix(path.Base(workspace.URIToPath(uri)), ".md")
		if NormalizeFilename(stemURI) == normTarget {
			found, ok = uri, true
		}
	})
	return found, ok
}

// NormalizeFilename implements the filename-matching normalization rule:
// lowercase; replace each space and underscore with '-'. Other characters
// pass through unchanged.
func NormalizeFilename(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '_' {
			b.WriteByte('-')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeHeaderFragment implements the header-fragment normalization
// rule: lowercase; map any non-alphanumeric rune to '-'; collapse runs of
// '-'; strip leading/trailing '-'.
func NormalizeHeaderFragment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevDash := false
	for _, r := range strings.ToLower(s) {
		if isAlnum(r) {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z')
}

// HeaderMatches implements the three-way header-match equality rule:
// raw-equal, OR raw target equals normalized stored content, OR
// normalized target equals normalized stored content.
func HeaderMatches(target string, stored string) bool {
	target = strings.TrimPrefix(strings.TrimSpace(target), "#")
	if target == stored {
		return true
	}
	normStored := NormalizeHeaderFragment(stored)
	if target == normStored {
		return true
	}
	return NormalizeHeaderFragment(target) == normStored
}
