package markdown

import (
	"strings"

	"github.com/mdnotes/mdls/internal/buffer"
	"gopkg.in/yaml.v3"
)

// parseFrontmatter recognizes an optional leading frontmatter block:
// an opening "---" line, a run of "key: value" lines (value being an
// unquoted scalar, a double-quoted string, or a newline-indented "- item"
// list), and a closing "---" line. It returns ok == false when text does
// not open with a frontmatter block, in which case rest == text.
//
// YAML decoding is delegated to gopkg.in/yaml.v3 via its node API so
// mapping-key order is preserved (a plain map loses it), mirroring the
// node-preserving technique this module's teacher pack uses for note
// metadata.
func parseFrontmatter(text string) (fm *Frontmatter, rest string, ok bool) {
	if !strings.HasPrefix(text, "---\n") {
		return nil, text, false
	}

	bodyStart := len("---\n")
	closeIdx := -1
	closeLineEnd := -1
	pos := bodyStart
	for pos <= len(text) {
		stop := lineEnd(text, pos)
		line := text[pos:stop]
		if line == "---" {
			closeIdx = pos
			closeLineEnd = stop
			break
		}
		if stop >= len(text) {
			break
		}
		pos = stop + 1
	}
	if closeIdx < 0 {
		return nil, text, false
	}

	yamlSrc := text[bodyStart:closeIdx]
	entries := decodeFrontmatterYAML(yamlSrc)

	end := closeLineEnd
	if end < len(text) {
		end++ // consume the closing line's newline
	}

	return &Frontmatter{
		Span:    buffer.Span{Start: 0, End: end},
		Entries: entries,
	}, text[end:], true
}

func decodeFrontmatterYAML(src string) []FrontmatterEntry {
	if strings.TrimSpace(src) == "" {
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}

	var entries []FrontmatterEntry
	for i := 0; i+1 < len(root.Content); i += 2 {
		k := root.Content[i]
		v := root.Content[i+1]
		if k == nil || v == nil {
			continue
		}
		entry := FrontmatterEntry{Key: k.Value}
		switch v.Kind {
		case yaml.SequenceNode:
			var list []string
			for _, item := range v.Content {
				if item != nil && item.Kind == yaml.ScalarNode {
					list = append(list, item.Value)
				}
			}
			entry.Value = FrontmatterValue{List: list, IsList: true}
		default:
			entry.Value = FrontmatterValue{Scalar: v.Value}
		}
		entries = append(entries, entry)
	}
	return entries
}
