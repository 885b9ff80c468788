package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdnotes/mdls/internal/workspace"
	"github.com/stretchr/testify/require"
)

func TestDocumentStoreOpenUpdateRemove(t *testing.T) {
	store := workspace.NewDocumentStore()
	doc := store.OpenDocument("file:///a.md", "# A\n", 1)
	require.NotNil(t, doc)
	require.Equal(t, 1, store.Len())

	err, ok := store.UpdateDocument("file:///a.md", "# B\n", 2)
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, "B", store.GetDocument("file:///a.md").References()[0].Header.Content)

	_, ok = store.UpdateDocument("file:///missing.md", "x", 1)
	require.False(t, ok)

	store.RemoveDocument("file:///a.md")
	require.Nil(t, store.GetDocument("file:///a.md"))
	require.Equal(t, 0, store.Len())
}

func TestIterReferencesWithURI(t *testing.T) {
	store := workspace.NewDocumentStore()
	store.OpenDocument("file:///a.md", "# A\n\n[[b]]\n", 1)
	store.OpenDocument("file:///b.md", "# B\n", 1)

	refs := store.IterReferencesWithURI()
	require.Len(t, refs, 3)
	for _, r := range refs {
		require.Contains(t, []string{"file:///a.md", "file:///b.md"}, r.URI)
	}
}

func TestCrawlMarkdownFilesSkipsDotAndNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), []byte("# N\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "hidden.md"), []byte("# H\n"), 0o644))

	paths, err := workspace.CrawlMarkdownFiles(dir)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Equal(t, "note.md", filepath.Base(paths[0]))
}

func TestLoadWorkspaceSeedsStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), []byte("# N\n"), 0o644))

	store := workspace.NewDocumentStore()
	require.NoError(t, workspace.LoadWorkspace(context.Background(), dir, store))
	require.Equal(t, 1, store.Len())
}

func TestLoadWorkspaceSkipsUnreadableFileAndLoadsTheRest(t *testing.T) {
	dir := t.TempDir()
	// Sorts before "note.md", so the crawl hits it first; a dangling
	// symlink fails os.ReadFile regardless of the test's privileges.
	require.NoError(t, os.Symlink(filepath.Join(dir, "does-not-exist"), filepath.Join(dir, "broken.md")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), []byte("# N\n"), 0o644))

	store := workspace.NewDocumentStore()
	require.NoError(t, workspace.LoadWorkspace(context.Background(), dir, store))
	require.Equal(t, 1, store.Len())
	require.NotNil(t, store.GetDocument(workspace.PathToURI(filepath.Join(dir, "note.md"))))
}

func TestURIPathRoundTrip(t *testing.T) {
	uri := workspace.PathToURI("/tmp/notes/a.md")
	require.Equal(t, "file:///tmp/notes/a.md", uri)
	require.Equal(t, "/tmp/notes/a.md", workspace.URIToPath(uri))
}
