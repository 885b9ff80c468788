package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mdnotes/mdls/internal/buffer"
	"github.com/mdnotes/mdls/internal/reference"
	"github.com/mdnotes/mdls/internal/section"
	"github.com/mdnotes/mdls/internal/workspace"
)

type codeActionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
}

// handleCodeAction offers an extract-header-and-section action: only
// offered when the request range is degenerate and the cursor sits on a
// Header reference.
func (s *Server) handleCodeAction(ctx context.Context, req Request) {
	var p codeActionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.replyError(req.ID, -32602, "invalid params: codeAction")
		return
	}
	if p.Range.Start != p.Range.End {
		s.reply(req.ID, []CodeAction{})
		return
	}

	doc := s.store.GetDocument(p.TextDocument.URI)
	if doc == nil {
		s.replyErr(req.ID, &DocumentNotFoundError{URI: p.TextDocument.URI})
		return
	}
	ref := doc.GetReferenceAtPosition(fromPosition(p.Range.Start))
	if ref == nil || ref.Kind != reference.KindHeader {
		s.reply(req.ID, []CodeAction{})
		return
	}

	sec, ok := section.Extract(ref.Header.Content, doc.References(), doc.Buffer())
	if !ok {
		s.reply(req.ID, []CodeAction{})
		return
	}

	sourcePath := workspace.URIToPath(p.TextDocument.URI)
	newName := generateExtractedFilename(ref.Header.Content)
	newPath := filepath.Join(filepath.Dir(sourcePath), newName)
	newURI := workspace.PathToURI(newPath)
	relPath := filepath.ToSlash(newName)

	version := doc.Version
	action := CodeAction{
		Title: "Extract header & section",
		Kind:  "refactor.extract",
		Edit: WorkspaceEdit{
			DocumentChanges: []any{
				CreateFile{Kind: "create", URI: newURI},
				newFileInsertEdit(newURI, sec.Text),
				sourceReplaceEdit(p.TextDocument.URI, version, sec.Range, ref.Header.Content, relPath),
			},
		},
	}
	s.reply(req.ID, []CodeAction{action})
}

// newFileInsertEdit inserts text at offset 0 of a brand new (empty) file.
func newFileInsertEdit(uri, text string) TextDocumentEdit {
	var e TextDocumentEdit
	e.TextDocument.URI = uri
	e.Edits = []TextEdit{{Range: Range{}, NewText: text}}
	return e
}

// sourceReplaceEdit replaces the extracted section's range in the source
// document with a link to the new file: `[<header>](<relPath>)\n\n`.
func sourceReplaceEdit(uri string, version int, rng buffer.Range, headerContent, relPath string) TextDocumentEdit {
	var e TextDocumentEdit
	e.TextDocument.URI = uri
	e.TextDocument.Version = &version
	e.Edits = []TextEdit{{
		Range:   toRange(rng),
		NewText: fmt.Sprintf("[%s](%s)\n\n", headerContent, relPath),
	}}
	return e
}

// generateExtractedFilename synthesizes a name for the extracted note: a
// deterministic slug of the header content, still collision-prone across
// headers that slug identically.
func generateExtractedFilename(headerContent string) string {
	slug := strings.ToLower(strings.TrimSpace(headerContent))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "note"
	}
	return slug + ".md"
}
