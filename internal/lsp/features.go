package lsp

import (
	"context"
	"encoding/json"

	"github.com/mdnotes/mdls/internal/buffer"
	"github.com/mdnotes/mdls/internal/reference"
	"github.com/mdnotes/mdls/internal/resolve"
	"github.com/mdnotes/mdls/internal/section"
)

type positionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// handleHover previews the target of a Link/WikiLink reference: if it
// carries a header fragment the hover shows that section, otherwise the
// whole document body. A Header reference or no reference at all yields
// no hover.
func (s *Server) handleHover(ctx context.Context, req Request) {
	var p positionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.replyError(req.ID, -32602, "invalid params: hover")
		return
	}
	doc, ref, err := s.refAtPosition(p.TextDocument.URI, fromPosition(p.Position))
	if err != nil {
		s.replyErr(req.ID, err)
		return
	}
	if ref == nil || ref.Kind == reference.KindHeader {
		s.reply(req.ID, nil)
		return
	}

	target, _ := ref.LinkTarget()
	linkedURI, err := resolve.Resolve(target, p.TextDocument.URI, s.workspaceRoot, s.store, s.cfg)
	if err != nil {
		s.replyErr(req.ID, err)
		return
	}
	linked := s.store.GetDocument(linkedURI)
	if linked == nil {
		s.replyErr(req.ID, &DocumentNotFoundError{URI: linkedURI})
		return
	}

	var content string
	if frag := ref.HeaderFragment(); frag != nil && *frag != "" {
		sec, ok := section.Extract(*frag, linked.References(), linked.Buffer())
		if !ok {
			s.reply(req.ID, nil)
			return
		}
		content = sec.Text
	} else {
		content = linked.Text()
	}

	_ = doc
	s.reply(req.ID, map[string]any{
		"contents": map[string]any{
			"kind":  "markdown",
			"value": content,
		},
		"range": toRange(ref.Range),
	})
}

// handleDefinition resolves a Link/WikiLink reference to the matching
// header in its target document.
func (s *Server) handleDefinition(ctx context.Context, req Request) {
	var p positionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.replyError(req.ID, -32602, "invalid params: definition")
		return
	}
	_, ref, err := s.refAtPosition(p.TextDocument.URI, fromPosition(p.Position))
	if err != nil {
		s.replyErr(req.ID, err)
		return
	}
	if ref == nil || ref.Kind == reference.KindHeader {
		s.reply(req.ID, nil)
		return
	}

	target, _ := ref.LinkTarget()
	linkedURI, err := resolve.Resolve(target, p.TextDocument.URI, s.workspaceRoot, s.store, s.cfg)
	if err != nil {
		s.replyErr(req.ID, err)
		return
	}
	linked := s.store.GetDocument(linkedURI)
	if linked == nil {
		s.replyErr(req.ID, &DocumentNotFoundError{URI: linkedURI})
		return
	}

	frag := ref.HeaderFragment()
	headerRange, found := firstMatchingHeader(linked.References(), frag)
	if !found {
		s.replyErr(req.ID, &ResolutionError{Target: target, Reason: "no matching header in target document"})
		return
	}
	s.reply(req.ID, Location{URI: linkedURI, Range: toRange(headerRange)})
}

// firstMatchingHeader returns the range of the first Header reference
// matching frag under the three-way rule, or — when frag is nil or empty —
// the first Header reference in the document.
func firstMatchingHeader(refs []reference.Reference, frag *string) (buffer.Range, bool) {
	for _, r := range refs {
		if r.Kind != reference.KindHeader {
			continue
		}
		if frag == nil || *frag == "" {
			return r.Range, true
		}
		if resolve.HeaderMatches(*frag, r.Header.Content) {
			return r.Range, true
		}
	}
	return buffer.Range{}, false
}

type referenceParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
	Context      struct {
		IncludeDeclaration bool `json:"includeDeclaration"`
	} `json:"context"`
}

// handleReferences finds every reference pointing at the header or
// document targeted by the reference under the cursor.
func (s *Server) handleReferences(ctx context.Context, req Request) {
	var p referenceParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.replyError(req.ID, -32602, "invalid params: references")
		return
	}
	doc, ref, err := s.refAtPosition(p.TextDocument.URI, fromPosition(p.Position))
	if err != nil {
		s.replyErr(req.ID, err)
		return
	}
	if ref == nil {
		s.reply(req.ID, []Location{})
		return
	}

	var locations []Location
	switch ref.Kind {
	case reference.KindHeader:
		normHeader := resolve.NormalizeHeaderFragment(ref.Header.Content)
		for _, rd := range s.store.IterReferencesWithURI() {
			if rd.Ref.Kind == reference.KindHeader {
				continue
			}
			target, _ := rd.Ref.LinkTarget()
			resolved, err := resolve.Resolve(target, rd.URI, s.workspaceRoot, s.store, s.cfg)
			if err != nil || resolved != p.TextDocument.URI {
				continue
			}
			frag := rd.Ref.HeaderFragment()
			if frag == nil || resolve.NormalizeHeaderFragment(*frag) != normHeader {
				continue
			}
			locations = append(locations, Location{URI: rd.URI, Range: toRange(rd.Ref.Range)})
		}
	default:
		target, _ := ref.LinkTarget()
		resolvedTarget, err := resolve.Resolve(target, p.TextDocument.URI, s.workspaceRoot, s.store, s.cfg)
		if err != nil {
			s.replyErr(req.ID, err)
			return
		}
		refFrag := ref.HeaderFragment()
		for _, rd := range s.store.IterReferencesWithURI() {
			if rd.Ref.Kind == reference.KindHeader {
				if rd.URI == resolvedTarget && refFrag != nil && resolve.HeaderMatches(*refFrag, rd.Ref.Header.Content) {
					locations = append(locations, Location{URI: rd.URI, Range: toRange(rd.Ref.Range)})
				}
				continue
			}
			otherTarget, _ := rd.Ref.LinkTarget()
			otherResolved, err := resolve.Resolve(otherTarget, rd.URI, s.workspaceRoot, s.store, s.cfg)
			if err != nil || otherResolved != resolvedTarget {
				continue
			}
			otherFrag := rd.Ref.HeaderFragment()
			if !fragmentsCompatible(refFrag, otherFrag) {
				continue
			}
			if rd.URI == p.TextDocument.URI && rd.Ref.Range == ref.Range && !p.Context.IncludeDeclaration {
				continue
			}
			locations = append(locations, Location{URI: rd.URI, Range: toRange(rd.Ref.Range)})
		}
	}

	if p.Context.IncludeDeclaration {
		locations = append([]Location{{URI: p.TextDocument.URI, Range: toRange(ref.Range)}}, locations...)
	}
	_ = doc
	s.reply(req.ID, locations)
}

// fragmentsCompatible reports whether two header-fragment pointers are
// "compatible": both absent, or both present and equal under the
// header-fragment normalization rule.
func fragmentsCompatible(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return resolve.NormalizeHeaderFragment(*a) == resolve.NormalizeHeaderFragment(*b)
}
