// Package document implements the Document type: a URI-keyed buffer plus
// its freshly parsed reference table and diagnostics, reparsed wholesale on
// every update.
package document

import (
	"fmt"

	"github.com/mdnotes/mdls/internal/buffer"
	"github.com/mdnotes/mdls/internal/markdown"
	"github.com/mdnotes/mdls/internal/reference"
)

// Diagnostic is a (Range, severity, message, source) finding cached on a
// Document, produced by parser error recovery.
type Diagnostic struct {
	Range    buffer.Range
	Severity markdown.Severity
	Message  string
	Source   string
}

// Document owns (URI, version, buffer, references, diagnostics). Its
// references and diagnostics are derived: after New or Update returns, they
// are fully regenerated and valid against the current buffer.
type Document struct {
	URI     string
	Version int

	buf         *buffer.Buffer
	parsed      *markdown.ParsedMarkdown
	references  []reference.Reference
	diagnostics []Diagnostic
}

// New constructs a Document by parsing text and extracting its references
// and diagnostics.
func New(uri string, text string, version int) *Document {
	d := &Document{URI: uri, Version: version}
	d.reparse(text)
	return d
}

// Update replaces the buffer with text, reparses, and regenerates
// references and diagnostics atomically: no caller observes a Document
// whose references or diagnostics lag behind its buffer. version must be
// strictly greater than the current version: an out-of-order update returns
// an error and leaves the Document unchanged (internal/lsp logs and ignores
// it).
func (d *Document) Update(text string, version int) error {
	if version <= d.Version {
		return fmt.Errorf("document %s: out-of-order update (have version %d, got %d)", d.URI, d.Version, version)
	}
	d.reparse(text)
	d.Version = version
	return nil
}

func (d *Document) reparse(text string) {
	buf := buffer.New(text)
	parsed, parseDiags := markdown.Parse(text)
	refs := reference.Extract(parsed, buf)

	diags := make([]Diagnostic, 0, len(parseDiags))
	for _, pd := range parseDiags {
		diags = append(diags, Diagnostic{
			Range:    buf.ByteRangeToRange(pd.Span),
			Severity: pd.Severity,
			Message:  pd.Message,
			Source:   pd.Source,
		})
	}

	d.buf = buf
	d.parsed = parsed
	d.references = refs
	d.diagnostics = diags
}

// Buffer returns the document's current text buffer.
func (d *Document) Buffer() *buffer.Buffer { return d.buf }

// Text returns the full current document text.
func (d *Document) Text() string { return d.buf.Text() }

// Parsed returns the current parsed syntax model (frontmatter + body).
func (d *Document) Parsed() *markdown.ParsedMarkdown { return d.parsed }

// References returns the ordered reference table for the document.
func (d *Document) References() []reference.Reference { return d.references }

// Diagnostics returns the cached diagnostics for the document.
func (d *Document) Diagnostics() []Diagnostic { return d.diagnostics }

// GetReferenceAtPosition returns the first reference whose Range contains
// pos (half-open: pos == Range.End is not contained), or nil.
func (d *Document) GetReferenceAtPosition(pos buffer.Position) *reference.Reference {
	for i := range d.references {
		if d.references[i].Range.Contains(pos) {
			return &d.references[i]
		}
	}
	return nil
}

// ByteRangeToRange converts a byte Span in the current buffer to an LSP
// Range.
func (d *Document) ByteRangeToRange(s buffer.Span) buffer.Range {
	return d.buf.ByteRangeToRange(s)
}

// RangeToByteRange converts an LSP Range to a byte Span in the current
// buffer.
func (d *Document) RangeToByteRange(r buffer.Range) buffer.Span {
	return d.buf.RangeToByteRange(r)
}
