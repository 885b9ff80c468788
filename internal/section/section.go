// Package section extracts the byte range and text of the section headed
// by a matched header: from the header itself to the next header of equal
// or shallower level, or to the end of the buffer.
package section

import (
	"github.com/mdnotes/mdls/internal/buffer"
	"github.com/mdnotes/mdls/internal/reference"
	"github.com/mdnotes/mdls/internal/resolve"
)

// Section is the result of a successful Extract: the header's range, its
// level, and the full byte range of the section it heads.
type Section struct {
	HeaderRange buffer.Range
	Level       int
	Range       buffer.Range
	Text        string
}

// Extract finds the first Header reference in refs matching target (a
// header content string, optionally prefixed with '#', stripped before
// matching) under the three-way header-match rule, then walks forward for
// the next Header reference whose level is <= the matched header's level.
// It returns ok == false if no Header reference matches target.
func Extract(target string, refs []reference.Reference, buf *buffer.Buffer) (Section, bool) {
	startIdx := -1
	for i, r := range refs {
		if r.Kind != reference.KindHeader {
			continue
		}
		if resolve.HeaderMatches(target, r.Header.Content) {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return Section{}, false
	}

	start := refs[startIdx]
	level := start.Header.Level
	endByte := buf.ByteLen()
	end := buf.BytePosition(endByte)

	for i := startIdx + 1; i < len(refs); i++ {
		r := refs[i]
		if r.Kind != reference.KindHeader {
			continue
		}
		if r.Header.Level <= level {
			end = r.Range.Start
			endByte = buf.PositionToByte(r.Range.Start)
			break
		}
	}

	rng := buffer.Range{Start: start.Range.Start, End: end}
	startByte := buf.PositionToByte(start.Range.Start)
	return Section{
		HeaderRange: start.Range,
		Level:       level,
		Range:       rng,
		Text:        buf.Slice(startByte, endByte),
	}, true
}
