package resolve_test

import (
	"testing"

	"github.com/mdnotes/mdls/internal/config"
	"github.com/mdnotes/mdls/internal/resolve"
	"github.com/mdnotes/mdls/internal/workspace"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeaderFragment(t *testing.T) {
	require.Equal(t, "example-header", resolve.NormalizeHeaderFragment("Example & Header"))
	require.Equal(t, "example-header", resolve.NormalizeHeaderFragment("Example  Header"))
	require.Equal(t, "example-header", resolve.NormalizeHeaderFragment("Example-Header"))
}

func TestNormalizeFilename(t *testing.T) {
	require.Equal(t, "my-note", resolve.NormalizeFilename("My Note"))
	require.Equal(t, "my-note", resolve.NormalizeFilename("my_note"))
	require.Equal(t, "my-note", resolve.NormalizeFilename("MY-NOTE"))
}

func TestNormalizeHeaderFragmentIdempotent(t *testing.T) {
	s := "Example & Header -- weird!!"
	once := resolve.NormalizeHeaderFragment(s)
	twice := resolve.NormalizeHeaderFragment(once)
	require.Equal(t, once, twice)
}

func TestNormalizeFilenameIdempotentAndCaseInsensitive(t *testing.T) {
	require.Equal(t, resolve.NormalizeFilename("A B"), resolve.NormalizeFilename("a-b"))
	require.Equal(t, "a-b", resolve.NormalizeFilename("a-b"))
}

func TestHeaderMatchesThreeWay(t *testing.T) {
	require.True(t, resolve.HeaderMatches("Topic", "Topic"))
	require.True(t, resolve.HeaderMatches("Topic", "topic"))
	require.True(t, resolve.HeaderMatches("Example & Header", "Example-Header"))
	require.False(t, resolve.HeaderMatches("Other", "Topic"))
}

func TestResolveFilenameTarget(t *testing.T) {
	store := workspace.NewDocumentStore()
	store.OpenDocument("file:///notes/My Note.md", "# A\n", 1)
	store.OpenDocument("file:///notes/source.md", "# S\n", 1)

	uri, err := resolve.Resolve("my-note", "file:///notes/source.md", "file:///notes", store, config.Default())
	require.NoError(t, err)
	require.Equal(t, "file:///notes/My Note.md", uri)
}

func TestResolveRelativePathTarget(t *testing.T) {
	store := workspace.NewDocumentStore()
	uri, err := resolve.Resolve("../other/b.md", "file:///root/notes/a.md", "file:///root", store, config.Default())
	require.NoError(t, err)
	require.Equal(t, "file:///root/other/b.md", uri)
}

func TestResolveAbsolutePathRequiresWorkspaceRoot(t *testing.T) {
	store := workspace.NewDocumentStore()
	_, err := resolve.Resolve("/b.md", "file:///root/notes/a.md", "", store, config.Default())
	require.Error(t, err)
}

func TestResolveFallsBackToPathWhenFilenameResolutionDisabled(t *testing.T) {
	store := workspace.NewDocumentStore()
	store.OpenDocument("file:///notes/b.md", "# B\n", 1)

	cfg := config.Default()
	cfg.Markdown.FilenameResolution = false
	uri, err := resolve.Resolve("b", "file:///notes/a.md", "file:///", store, cfg)
	require.NoError(t, err)
	require.Equal(t, "file:///notes/b", uri)
}
