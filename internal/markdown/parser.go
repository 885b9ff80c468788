package markdown

import (
	"strings"

	"github.com/mdnotes/mdls/internal/buffer"
)

// Parse runs the recoverable Markdown+YAML grammar over text, returning the
// parsed document and any diagnostics produced by error recovery. Parse
// never fails: malformed input degrades to Invalid blocks rather than
// aborting.
func Parse(text string) (*ParsedMarkdown, []Diagnostic) {
	var diags []Diagnostic

	body := text
	var fm *Frontmatter
	if fmBlock, rest, ok := parseFrontmatter(text); ok {
		fm = fmBlock
		body = rest
	}
	bodyOffset := len(text) - len(body)

	blocks := parseBlocks(body, bodyOffset, &diags)
	return &ParsedMarkdown{Frontmatter: fm, Body: blocks}, diags
}

// parseBlocks splits body into block-level units starting at absolute
// offset base within the original source.
func parseBlocks(body string, base int, diags *[]Diagnostic) []Block {
	var blocks []Block
	pos := 0

	for pos < len(body) {
		// Skip blank lines (whitespace-only) between blocks.
		if isBlankLine(body, pos) {
			pos = lineEnd(body, pos) + 1
			continue
		}

		line, lineStop := currentLine(body, pos)

		if level, content, ok := matchHeaderLine(line); ok {
			blocks = append(blocks, Block{
				Kind:   BlockHeader,
				Span:   buffer.Span{Start: base + pos, End: base + lineStop},
				Header: &Header{Level: level, Content: content},
			})
			pos = advancePastLine(body, lineStop)
			continue
		}

		if ident, rest, ok := matchFootnoteDefLine(line); ok {
			contentInlines := scanInlines(rest, base+pos+(len(line)-len(rest)), diags)
			blocks = append(blocks, Block{
				Kind:        BlockFootnoteDefinition,
				Span:        buffer.Span{Start: base + pos, End: base + lineStop},
				FootnoteDef: &FootnoteDefinition{Ident: ident, Content: contentInlines},
			})
			pos = advancePastLine(body, lineStop)
			continue
		}

		if isBracketPrefixed(line) && !tryParseBracketConstruct(line) {
			blocks = append(blocks, Block{
				Kind: BlockInvalid,
				Span: buffer.Span{Start: base + pos, End: base + lineStop},
			})
			*diags = append(*diags, Diagnostic{
				Span:     buffer.Span{Start: base + pos, End: base + lineStop},
				Severity: SeverityWarning,
				Message:  "malformed block, skipped to next line",
				Source:   "mdls",
			})
			pos = advancePastLine(body, lineStop)
			continue
		}

		// Paragraph: accumulate lines until a blank line, EOF, or a line
		// that itself looks like a Header or FootnoteDefinition.
		paraStart := pos
		paraEnd := lineStop
		next := advancePastLine(body, lineStop)
		for next < len(body) && !isBlankLine(body, next) {
			nl, nlStop := currentLine(body, next)
			if _, _, ok := matchHeaderLine(nl); ok {
				break
			}
			if _, _, ok := matchFootnoteDefLine(nl); ok {
				break
			}
			paraEnd = nlStop
			next = advancePastLine(body, nlStop)
		}

		paraText := body[paraStart:paraEnd]
		inlines := scanInlines(paraText, base+paraStart, diags)
		blocks = append(blocks, Block{
			Kind:      BlockParagraph,
			Span:      buffer.Span{Start: base + paraStart, End: base + paraEnd},
			Paragraph: &Paragraph{Inlines: inlines},
		})
		pos = next
	}

	return blocks
}

// currentLine returns the text of the line starting at pos (excluding its
// terminating newline) and the absolute-within-body offset of its end
// (exclusive of the newline).
func currentLine(body string, pos int) (line string, stop int) {
	stop = lineEnd(body, pos)
	return body[pos:stop], stop
}

// lineEnd returns the offset of the '\n' terminating the line starting at
// pos, or len(body) if the line runs to EOF.
func lineEnd(body string, pos int) int {
	if idx := strings.IndexByte(body[pos:], '\n'); idx >= 0 {
		return pos + idx
	}
	return len(body)
}

// advancePastLine returns the offset just past the newline at stop (the
// value returned by lineEnd), or len(body) if stop is already at EOF.
func advancePastLine(body string, stop int) int {
	if stop < len(body) {
		return stop + 1
	}
	return stop
}

func isBlankLine(body string, pos int) bool {
	stop := lineEnd(body, pos)
	return strings.TrimSpace(body[pos:stop]) == ""
}

// matchHeaderLine recognizes "#".."######" + inline whitespace + trimmed
// text. Returns ok == false if the line is not a header (too many '#', or a
// non-whitespace character directly after the run — e.g. a tag like
// "#work").
func matchHeaderLine(line string) (level int, content string, ok bool) {
	i := 0
	for i < len(line) && line[i] == '#' {
		i++
	}
	if i == 0 || i > 6 {
		return 0, "", false
	}
	if i < len(line) {
		c := line[i]
		if c != ' ' && c != '\t' {
			return 0, "", false
		}
	}
	content = strings.TrimSpace(line[i:])
	content = strings.TrimRight(content, "#")
	content = strings.TrimRight(content, " \t")
	return i, content, true
}

// matchFootnoteDefLine recognizes "[^IDENT]:" at the start of a line.
func matchFootnoteDefLine(line string) (ident string, rest string, ok bool) {
	if !strings.HasPrefix(line, "[^") {
		return "", "", false
	}
	i := 2
	start := i
	for i < len(line) && line[i] != ']' {
		i++
	}
	if i >= len(line) || i == start {
		return "", "", false
	}
	ident = line[start:i]
	i++ // skip ']'
	if i >= len(line) || line[i] != ':' {
		return "", "", false
	}
	i++
	rest = strings.TrimPrefix(line[i:], " ")
	return ident, rest, true
}
