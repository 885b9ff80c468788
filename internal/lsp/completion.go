package lsp

import (
	"context"
	"encoding/json"
	"path"
	"path/filepath"
	"strings"

	"github.com/mdnotes/mdls/internal/config"
	"github.com/mdnotes/mdls/internal/document"
	"github.com/mdnotes/mdls/internal/reference"
	"github.com/mdnotes/mdls/internal/resolve"
	"github.com/mdnotes/mdls/internal/workspace"
)

// handleCompletion proposes link targets and header fragments: a two-byte
// trigger (`[[` or `](`) proposes every document as a link target; a
// one-byte `#` trigger looks back for the nearest such delimiter and
// proposes every Header in the file it names.
func (s *Server) handleCompletion(ctx context.Context, req Request) {
	var p positionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.replyError(req.ID, -32602, "invalid params: completion")
		return
	}
	doc := s.store.GetDocument(p.TextDocument.URI)
	if doc == nil {
		s.replyErr(req.ID, &DocumentNotFoundError{URI: p.TextDocument.URI})
		return
	}

	buf := doc.Buffer()
	text := doc.Text()
	cursor := buf.PositionToByte(fromPosition(p.Position))
	before := text[:cursor]
	after := text[cursor:]
	atEOF := after == ""

	switch {
	case strings.HasSuffix(before, "[["):
		s.reply(req.ID, s.completeTargets(p.TextDocument.URI, true, atEOF))
	case strings.HasSuffix(before, "]("):
		s.reply(req.ID, s.completeTargets(p.TextDocument.URI, false, atEOF))
	case strings.HasSuffix(before, "#"):
		s.reply(req.ID, s.completeHeaders(p.TextDocument.URI, before, after))
	default:
		s.reply(req.ID, []CompletionItem{})
	}
}

// completeTargets enumerates every indexed document as a link-target
// completion item, in the style config.Markdown.LinkStyle selects.
func (s *Server) completeTargets(sourceURI string, wiki bool, atEOF bool) []CompletionItem {
	var items []CompletionItem
	for _, uri := range s.documentURIs() {
		label := s.linkLabel(uri, sourceURI)
		insert := label
		if !wiki {
			insert = strings.ReplaceAll(insert, " ", "%20")
		}
		if atEOF {
			if wiki {
				insert += "]]"
			} else {
				insert += ")"
			}
		}
		items = append(items, CompletionItem{
			Label:      label,
			Kind:       completionItemKindFile,
			InsertText: insert,
			Detail:     uri,
		})
	}
	return items
}

func (s *Server) documentURIs() []string {
	var uris []string
	s.store.IterDocuments(func(uri string, _ *document.Document) {
		uris = append(uris, uri)
	})
	return uris
}

// linkLabel renders uri as a target string per cfg.Markdown.LinkStyle:
// Filename is the bare stem, Relative is relative to sourceURI's
// directory, Absolute is "/"-prefixed from the workspace root.
func (s *Server) linkLabel(uri, sourceURI string) string {
	targetPath := workspace.URIToPath(uri)
	switch s.cfg.Markdown.LinkStyle {
	case config.LinkStyleFilename:
		base := path.Base(targetPath)
		return strings.TrimSuffix(base, ".md")
	case config.LinkStyleAbsolute:
		if s.workspaceRoot == "" {
			return targetPath
		}
		root := workspace.URIToPath(s.workspaceRoot)
		rel, err := filepath.Rel(root, targetPath)
		if err != nil {
			return targetPath
		}
		return "/" + filepath.ToSlash(rel)
	default: // LinkStyleRelative
		sourceDir := path.Dir(workspace.URIToPath(sourceURI))
		rel, err := filepath.Rel(sourceDir, targetPath)
		if err != nil {
			return targetPath
		}
		return filepath.ToSlash(rel)
	}
}

// completeHeaders implements the one-byte "#" completion context: scan up
// to 200 bytes back from the trigger for the nearest "[[" or "](",
// resolve the file portion between that delimiter and the trigger, and
// propose every Header in the resolved document.
func (s *Server) completeHeaders(sourceURI, before, after string) []CompletionItem {
	const lookback = 200
	start := len(before) - lookback
	if start < 0 {
		start = 0
	}
	window := before[start:]

	wikiIdx := strings.LastIndex(window, "[[")
	linkIdx := strings.LastIndex(window, "](")
	wiki := wikiIdx > linkIdx
	delimIdx, delimLen := wikiIdx, 2
	if !wiki {
		delimIdx, delimLen = linkIdx, 2
	}
	if delimIdx < 0 {
		return []CompletionItem{}
	}

	fileTarget := window[delimIdx+delimLen : len(window)-1] // up to, excluding, the '#'
	targetURI, err := resolve.Resolve(fileTarget, sourceURI, s.workspaceRoot, s.store, s.cfg)
	if err != nil {
		return []CompletionItem{}
	}
	targetDoc := s.store.GetDocument(targetURI)
	if targetDoc == nil {
		return []CompletionItem{}
	}

	closing := ""
	if wiki && !strings.HasPrefix(after, "]]") {
		closing = "]]"
	} else if !wiki && !strings.HasPrefix(after, ")") {
		closing = ")"
	}

	var items []CompletionItem
	for _, ref := range targetDoc.References() {
		if ref.Kind != reference.KindHeader {
			continue
		}
		items = append(items, CompletionItem{
			Label:      ref.Header.Content,
			Kind:       completionItemKindText,
			InsertText: ref.Header.Content + closing,
		})
	}
	return items
}

// handleCompletionResolve returns item unchanged: this server's completion
// items carry their full detail/documentation up front, so resolve is a
// pass-through satisfying the `completionProvider.resolveProvider`
// capability rather than deferring real work.
func (s *Server) handleCompletionResolve(ctx context.Context, req Request) {
	var item CompletionItem
	if err := json.Unmarshal(req.Params, &item); err != nil {
		s.replyError(req.ID, -32602, "invalid params: completionItem/resolve")
		return
	}
	s.reply(req.ID, item)
}
