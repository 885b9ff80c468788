// Package markdown implements the recoverable Markdown+YAML grammar this
// module indexes: headers, footnote definitions, paragraphs of inline tags,
// images, wiki links, inline links, and footnote references, plus an
// optional leading YAML frontmatter block. The grammar is a deliberate
// subset tuned for note-linking, not CommonMark conformance.
package markdown

import "github.com/mdnotes/mdls/internal/buffer"

// BlockKind discriminates the block-level node stored in a Block.
type BlockKind int

const (
	BlockHeader BlockKind = iota
	BlockFootnoteDefinition
	BlockParagraph
	BlockInvalid
)

// Block is one block-level unit of a parsed document body.
type Block struct {
	Kind BlockKind
	Span buffer.Span

	Header      *Header             // set when Kind == BlockHeader
	FootnoteDef *FootnoteDefinition // set when Kind == BlockFootnoteDefinition
	Paragraph   *Paragraph          // set when Kind == BlockParagraph
}

// Header is a `#`..`######` line. Content is trimmed of surrounding
// whitespace and any trailing `#` run.
type Header struct {
	Level   int
	Content string
}

// FootnoteDefinition is a `[^ident]: ...` block.
type FootnoteDefinition struct {
	Ident   string
	Content []Inline
}

// Paragraph is a run of inline nodes terminated by a blank line or EOF.
type Paragraph struct {
	Inlines []Inline
}

// InlineKind discriminates the inline node stored in an Inline.
type InlineKind int

const (
	InlinePlainText InlineKind = iota
	InlineTag
	InlineImage
	InlineWikiLink
	InlineLink
	InlineFootnoteRef
)

// Inline is one inline-level node within a Paragraph or FootnoteDefinition.
type Inline struct {
	Kind InlineKind
	Span buffer.Span

	PlainText   string
	Tag         string       // InlineTag: the text after '#'
	Image       *Image       // InlineImage
	WikiLink    *WikiLink    // InlineWikiLink
	Link        *Link        // InlineLink
	FootnoteRef string       // InlineFootnoteRef: the ident after '[^'
}

// Image is `![alt](uri)`.
type Image struct {
	Alt string
	URI string
}

// WikiLink is `[[target(#header)?(|alias)?]]`.
type WikiLink struct {
	Target string
	Header *string
	Alias  *string
}

// Link is `[alt](target(#header)?)`. Title is reserved for a quoted-title
// extension the grammar does not produce; it is always nil for documents
// parsed by this package.
type Link struct {
	AltText string
	Target  string
	Header  *string
	Title   *string
}

// Frontmatter is the optional leading `---`-delimited YAML block. Values are
// either a plain string or a list of strings, preserving declaration order.
type Frontmatter struct {
	Span    buffer.Span
	Entries []FrontmatterEntry
}

// FrontmatterEntry is one `key: value` pair.
type FrontmatterEntry struct {
	Key   string
	Value FrontmatterValue
}

// FrontmatterValue holds either a scalar string or a list of strings.
type FrontmatterValue struct {
	Scalar string
	List   []string
	IsList bool
}

// ParsedMarkdown is the output of Parse: an optional frontmatter block and
// the ordered list of body blocks.
type ParsedMarkdown struct {
	Frontmatter *Frontmatter
	Body        []Block
}

// Severity mirrors LSP DiagnosticSeverity values used by this package.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Diagnostic is one parser-recovery finding.
type Diagnostic struct {
	Span     buffer.Span
	Severity Severity
	Message  string
	Source   string
}
