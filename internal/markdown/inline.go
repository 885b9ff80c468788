package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mdnotes/mdls/internal/buffer"
)

// inlineScanner turns a block of text (one Paragraph's or FootnoteDefinition's
// worth, with embedded single newlines but no blank lines) into an ordered
// list of Inline nodes, in the priority order fixed by the grammar: Tag,
// Image, WikiLink, Link, footnote reference, PlainText.
type inlineScanner struct {
	text string
	base int // absolute byte offset of text[0] in the source document
	diag *[]Diagnostic
}

func scanInlines(text string, base int, diag *[]Diagnostic) []Inline {
	sc := &inlineScanner{text: text, base: base, diag: diag}
	return sc.run()
}

func (sc *inlineScanner) run() []Inline {
	var out []Inline
	text := sc.text
	i := 0
	plainStart := 0

	isLink := func(at int) bool {
		_, _, _, ok := parseLink(text, at)
		return ok
	}

	flushPlain := func(end int) {
		if end > plainStart {
			out = append(out, Inline{
				Kind:      InlinePlainText,
				Span:      sc.span(plainStart, end),
				PlainText: text[plainStart:end],
			})
		}
	}

	for i < len(text) {
		switch {
		case strings.HasPrefix(text[i:], "\n\n"):
			flushPlain(i)
			plainStart = i
			i += 2
			continue

		case text[i] == '#':
			if tag, end, ok := parseTag(text, i); ok {
				flushPlain(i)
				out = append(out, Inline{Kind: InlineTag, Span: sc.span(i, end), Tag: tag})
				i = end
				plainStart = i
				continue
			}
			i++

		case strings.HasPrefix(text[i:], "![" ):
			if img, end, ok := parseImage(text, i); ok {
				flushPlain(i)
				out = append(out, Inline{Kind: InlineImage, Span: sc.span(i, end), Image: img})
				i = end
				plainStart = i
				continue
			}
			i++

		case strings.HasPrefix(text[i:], "[["):
			if wl, end, warn, ok := parseWikiLink(text, i); ok {
				flushPlain(i)
				sp := sc.span(i, end)
				if warn {
					sc.addDiag(sp, "wiki link alias has leading or trailing whitespace")
				}
				out = append(out, Inline{Kind: InlineWikiLink, Span: sp, WikiLink: wl})
				i = end
				plainStart = i
				continue
			}
			i++

		case strings.HasPrefix(text[i:], "[^") && !isLink(i):
			if ident, end, ok := parseFootnoteRef(text, i); ok {
				flushPlain(i)
				out = append(out, Inline{Kind: InlineFootnoteRef, Span: sc.span(i, end), FootnoteRef: ident})
				i = end
				plainStart = i
				continue
			}
			i++

		case text[i] == '[':
			if lk, end, warn, ok := parseLink(text, i); ok {
				flushPlain(i)
				sp := sc.span(i, end)
				if warn {
					sc.addDiag(sp, "link text has leading or trailing whitespace")
				}
				out = append(out, Inline{Kind: InlineLink, Span: sp, Link: lk})
				i = end
				plainStart = i
				continue
			}
			i++

		default:
			i++
		}
	}
	flushPlain(len(text))
	return out
}

func (sc *inlineScanner) span(start, end int) buffer.Span {
	return buffer.Span{Start: sc.base + start, End: sc.base + end}
}

func (sc *inlineScanner) addDiag(sp buffer.Span, msg string) {
	if sc.diag == nil {
		return
	}
	*sc.diag = append(*sc.diag, Diagnostic{Span: sp, Severity: SeverityWarning, Message: msg, Source: "mdls"})
}

// parseTag parses a `#ident` tag starting at i (text[i] == '#'). Reports ok
// == false if no alphanumeric run follows.
func parseTag(text string, i int) (tag string, end int, ok bool) {
	j := i + 1
	for j < len(text) {
		r, size := utf8.DecodeRuneInString(text[j:])
		if !isAlnumRune(r) {
			break
		}
		j += size
	}
	if j == i+1 {
		return "", i, false
	}
	return text[i+1 : j], j, true
}

func isAlnumRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// parseImage parses `![alt](uri)` starting at i (text[i:i+2] == "![").
func parseImage(text string, i int) (img *Image, end int, ok bool) {
	j := i + 2
	altStart := j
	for j < len(text) && text[j] != ']' && text[j] != '\n' {
		j++
	}
	if j >= len(text) || text[j] != ']' {
		return nil, i, false
	}
	alt := strings.TrimSpace(text[altStart:j])
	j++
	if j >= len(text) || text[j] != '(' {
		return nil, i, false
	}
	j++
	uriStart := j
	for j < len(text) && text[j] != ')' && text[j] != '\n' {
		j++
	}
	if j >= len(text) || text[j] != ')' {
		return nil, i, false
	}
	uri := strings.TrimSpace(text[uriStart:j])
	j++
	return &Image{Alt: alt, URI: uri}, j, true
}

// parseWikiLink parses `[[target(#header)?(|alias)?]]` starting at i
// (text[i:i+2] == "[["). warn reports whether the alias had leading or
// trailing whitespace that was trimmed.
func parseWikiLink(text string, i int) (wl *WikiLink, end int, warn bool, ok bool) {
	j := i + 2
	targetStart := j
	for j < len(text) && text[j] != '#' && text[j] != ']' && text[j] != '|' && text[j] != '\n' {
		j++
	}
	target := strings.TrimSpace(text[targetStart:j])

	var headerPtr *string
	if j < len(text) && text[j] == '#' {
		hashStart := j
		k := j
		for k < len(text) && text[k] == '#' {
			k++
		}
		if k-hashStart > 6 {
			return nil, i, false, false
		}
		contentStart := k
		for k < len(text) && text[k] != '|' && text[k] != ']' && text[k] != '\n' {
			k++
		}
		h := strings.TrimSpace(text[contentStart:k])
		headerPtr = &h
		j = k
	}

	var aliasPtr *string
	if j < len(text) && text[j] == '|' {
		j++
		aliasStart := j
		for j < len(text) && text[j] != ']' && text[j] != '\n' {
			j++
		}
		raw := text[aliasStart:j]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			aliasPtr = &trimmed
			warn = trimmed != raw
		}
	}

	if j+1 >= len(text) || text[j] != ']' || text[j+1] != ']' {
		return nil, i, false, false
	}
	end = j + 2
	return &WikiLink{Target: target, Header: headerPtr, Alias: aliasPtr}, end, warn, true
}

// parseLink parses `[alt](target(#header)?)` starting at i (text[i] == '[').
// warn reports whether the alt text had leading or trailing whitespace.
func parseLink(text string, i int) (lk *Link, end int, warn bool, ok bool) {
	j := i + 1
	altStart := j
	for j < len(text) && text[j] != ']' && text[j] != '\n' {
		j++
	}
	if j >= len(text) || text[j] != ']' {
		return nil, i, false, false
	}
	raw := text[altStart:j]
	alt := strings.TrimSpace(raw)
	warn = alt != raw
	j++
	if j >= len(text) || text[j] != '(' {
		return nil, i, false, false
	}
	j++
	uriStart := j
	for j < len(text) && text[j] != '#' && text[j] != ')' && text[j] != '\n' {
		j++
	}
	uri := strings.TrimSpace(text[uriStart:j])

	var headerPtr *string
	if j < len(text) && text[j] == '#' {
		j++
		hStart := j
		for j < len(text) && text[j] != ')' && text[j] != '\n' {
			j++
		}
		h := text[hStart:j]
		headerPtr = &h
	}
	if j >= len(text) || text[j] != ')' {
		return nil, i, false, false
	}
	end = j + 1
	return &Link{AltText: alt, Target: uri, Header: headerPtr}, end, warn, true
}

// parseFootnoteRef parses `[^ident]` starting at i (text[i:i+2] == "[^").
func parseFootnoteRef(text string, i int) (ident string, end int, ok bool) {
	j := i + 2
	start := j
	for j < len(text) && text[j] != ']' && text[j] != '\n' {
		j++
	}
	if j >= len(text) || text[j] != ']' || j == start {
		return "", i, false
	}
	return text[start:j], j + 1, true
}

// tryParseBracketConstruct reports whether line (a single source line, no
// embedded newline) successfully parses as the bracket/bang construct its
// prefix selects. A line not starting with '[' or '!' trivially succeeds
// (it is not a bracket construct, so block-start validation does not apply).
func tryParseBracketConstruct(line string) bool {
	switch {
	case strings.HasPrefix(line, "!["):
		_, _, ok := parseImage(line, 0)
		return ok
	case strings.HasPrefix(line, "[["):
		_, _, _, ok := parseWikiLink(line, 0)
		return ok
	case strings.HasPrefix(line, "[^"):
		_, _, ok := parseFootnoteRef(line, 0)
		return ok
	case strings.HasPrefix(line, "["):
		_, _, _, ok := parseLink(line, 0)
		return ok
	default:
		return true
	}
}

func isBracketPrefixed(line string) bool {
	return strings.HasPrefix(line, "[") || strings.HasPrefix(line, "!")
}
