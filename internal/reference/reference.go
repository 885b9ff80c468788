// Package reference flattens a parsed Markdown document into the ordered
// list of Reference records (headers, inline links, wiki links) that every
// feature handler reads.
package reference

import (
	"github.com/mdnotes/mdls/internal/buffer"
	"github.com/mdnotes/mdls/internal/markdown"
)

// Kind discriminates the reference variant held by a Reference.
type Kind int

const (
	KindHeader Kind = iota
	KindLink
	KindWikiLink
)

// Reference is an anchor extracted from a parsed document: a header, an
// inline link, or a wiki link, carrying its kind-specific data and its LSP
// Range in the owning document's buffer.
type Reference struct {
	Kind  Kind
	Range buffer.Range

	Header   *HeaderRef
	Link     *LinkRef
	WikiLink *WikiLinkRef
}

type HeaderRef struct {
	Level   int
	Content string
}

type LinkRef struct {
	Target  string
	AltText string
	Title   *string
	Header  *string
}

type WikiLinkRef struct {
	Target string
	Alias  *string
	Header *string
}

// Extract walks parsed.Body and emits references in source order. buf
// converts each node's byte Span into an LSP Range.
func Extract(parsed *markdown.ParsedMarkdown, buf *buffer.Buffer) []Reference {
	var out []Reference
	for _, block := range parsed.Body {
		switch block.Kind {
		case markdown.BlockHeader:
			out = append(out, Reference{
				Kind:   KindHeader,
				Range:  buf.ByteRangeToRange(block.Span),
				Header: &HeaderRef{Level: block.Header.Level, Content: block.Header.Content},
			})
		case markdown.BlockParagraph:
			out = append(out, extractInlines(block.Paragraph.Inlines, buf)...)
		case markdown.BlockFootnoteDefinition, markdown.BlockInvalid:
			// Footnote definitions, plain text, tags, images, footnote
			// references, and invalid blocks carry no Reference.
		}
	}
	return out
}

func extractInlines(inlines []markdown.Inline, buf *buffer.Buffer) []Reference {
	var out []Reference
	for _, in := range inlines {
		switch in.Kind {
		case markdown.InlineLink:
			out = append(out, Reference{
				Kind:  KindLink,
				Range: buf.ByteRangeToRange(in.Span),
				Link: &LinkRef{
					Target:  in.Link.Target,
					AltText: in.Link.AltText,
					Title:   in.Link.Title,
					Header:  in.Link.Header,
				},
			})
		case markdown.InlineWikiLink:
			out = append(out, Reference{
				Kind:  KindWikiLink,
				Range: buf.ByteRangeToRange(in.Span),
				WikiLink: &WikiLinkRef{
					Target: in.WikiLink.Target,
					Alias:  in.WikiLink.Alias,
					Header: in.WikiLink.Header,
				},
			})
		}
	}
	return out
}

// HeaderFragment returns the header fragment string carried by a Link or
// WikiLink reference, if any.
func (r Reference) HeaderFragment() *string {
	switch r.Kind {
	case KindLink:
		if r.Link != nil {
			return r.Link.Header
		}
	case KindWikiLink:
		if r.WikiLink != nil {
			return r.WikiLink.Header
		}
	}
	return nil
}

// LinkTarget returns the raw target string carried by a Link or WikiLink
// reference, if any.
func (r Reference) LinkTarget() (string, bool) {
	switch r.Kind {
	case KindLink:
		if r.Link != nil {
			return r.Link.Target, true
		}
	case KindWikiLink:
		if r.WikiLink != nil {
			return r.WikiLink.Target, true
		}
	}
	return "", false
}
