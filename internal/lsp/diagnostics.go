package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mdnotes/mdls/internal/buffer"
	"github.com/mdnotes/mdls/internal/document"
	"github.com/mdnotes/mdls/internal/mdlog"
	"github.com/mdnotes/mdls/internal/reference"
	"github.com/mdnotes/mdls/internal/resolve"
)

// computeDiagnostics returns the document's cached parser-recovery
// diagnostics plus the config-gated supplemented diagnostics (broken
// link, missing frontmatter). Both supplements are computed fresh on
// each call rather than cached on the Document, since they depend on
// the rest of the workspace, not just this buffer.
func (s *Server) computeDiagnostics(uri string, doc *document.Document) []Diagnostic {
	out := make([]Diagnostic, 0, len(doc.Diagnostics()))
	for _, d := range doc.Diagnostics() {
		out = append(out, Diagnostic{
			Range:    toRange(d.Range),
			Severity: int(d.Severity),
			Message:  d.Message,
			Source:   d.Source,
		})
	}

	if s.cfg.Diagnostics.BrokenLinks {
		for _, ref := range doc.References() {
			target, ok := ref.LinkTarget()
			if !ok {
				continue
			}
			if !s.linkResolves(target, uri) {
				out = append(out, Diagnostic{
					Range:    toRange(ref.Range),
					Severity: int(severityWarning),
					Message:  fmt.Sprintf("unresolved link target %q", target),
					Source:   "mdls",
				})
			}
		}
	}

	if s.cfg.Diagnostics.MissingFrontmatter && doc.Parsed().Frontmatter == nil {
		out = append(out, Diagnostic{
			Range:    toRange(buffer.Range{}),
			Severity: int(severityInformation),
			Message:  "note has no frontmatter block",
			Source:   "mdls",
		})
	}

	return out
}

const (
	severityWarning     = 2
	severityInformation = 3
)

// linkResolves reports whether target resolves to a document actually
// present in the store; a path-syntax target that resolves arithmetically
// to a URI with no backing document still counts as broken.
func (s *Server) linkResolves(target, sourceURI string) bool {
	uri, err := resolve.Resolve(target, sourceURI, s.workspaceRoot, s.store, s.cfg)
	if err != nil {
		return false
	}
	return s.store.GetDocument(uri) != nil
}

func (s *Server) publishDiagnostics(ctx context.Context, uri string) {
	doc := s.store.GetDocument(uri)
	if doc == nil {
		return
	}
	s.notify("textDocument/publishDiagnostics", map[string]any{
		"uri":         uri,
		"version":     doc.Version,
		"diagnostics": s.computeDiagnostics(uri, doc),
	})
}

type diagnosticParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

// handleDiagnostic implements the pull-model textDocument/diagnostic
// request: parser-recovery diagnostics plus the supplemented
// broken-link/missing-frontmatter findings for the requested document.
func (s *Server) handleDiagnostic(ctx context.Context, req Request) {
	var p diagnosticParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.replyError(req.ID, -32602, "invalid params: diagnostic")
		return
	}
	doc := s.store.GetDocument(p.TextDocument.URI)
	if doc == nil {
		mdlog.FromContext(ctx).Warn("diagnostic request for unknown document", "uri", p.TextDocument.URI)
		s.replyErr(req.ID, &DocumentNotFoundError{URI: p.TextDocument.URI})
		return
	}
	s.reply(req.ID, map[string]any{
		"kind":  "full",
		"items": s.computeDiagnostics(p.TextDocument.URI, doc),
	})
}

// refAtPosition resolves (document, reference) at uri/pos, or an error when
// the document is missing. It never errors when pos simply has no
// reference — callers distinguish that by a nil *reference.Reference.
func (s *Server) refAtPosition(uri string, pos buffer.Position) (*document.Document, *reference.Reference, error) {
	doc := s.store.GetDocument(uri)
	if doc == nil {
		return nil, nil, &DocumentNotFoundError{URI: uri}
	}
	return doc, doc.GetReferenceAtPosition(pos), nil
}
