package reference_test

import (
	"testing"

	"github.com/mdnotes/mdls/internal/buffer"
	"github.com/mdnotes/mdls/internal/markdown"
	"github.com/mdnotes/mdls/internal/reference"
	"github.com/stretchr/testify/require"
)

func TestExtractHeaderAndLinks(t *testing.T) {
	src := "# A\n\nsee [b](b.md#Sec) and [[c|alias]]\n"
	parsed, diags := markdown.Parse(src)
	require.Empty(t, diags)
	buf := buffer.New(src)
	refs := reference.Extract(parsed, buf)
	require.Len(t, refs, 3)
	require.Equal(t, reference.KindHeader, refs[0].Kind)
	require.Equal(t, "A", refs[0].Header.Content)
	require.Equal(t, reference.KindLink, refs[1].Kind)
	require.Equal(t, "b.md", refs[1].Link.Target)
	require.Equal(t, reference.KindWikiLink, refs[2].Kind)
	require.Equal(t, "c", refs[2].WikiLink.Target)
}

func TestExtractIgnoresPlainTextAndTags(t *testing.T) {
	src := "just text and a #tag\n"
	parsed, _ := markdown.Parse(src)
	buf := buffer.New(src)
	refs := reference.Extract(parsed, buf)
	require.Empty(t, refs)
}
