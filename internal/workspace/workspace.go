// Package workspace owns the set of open/indexed Documents keyed by URI and
// the on-disk crawl that seeds it from a workspace root.
package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mdnotes/mdls/internal/document"
	"github.com/mdnotes/mdls/internal/mdlog"
	"github.com/mdnotes/mdls/internal/reference"
)

// DocumentStore is the single in-memory index of known documents, keyed by
// LSP document URI. It is safe for concurrent use, though this module's
// single-threaded server loop never exercises that concurrency.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*document.Document
}

// NewDocumentStore returns an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*document.Document)}
}

// OpenDocument inserts or replaces the document at uri with fresh text and
// version, mirroring textDocument/didOpen.
func (s *DocumentStore) OpenDocument(uri, text string, version int) *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := document.New(uri, text, version)
	s.docs[uri] = doc
	return doc
}

// UpdateDocument applies a full-text update to the document at uri,
// mirroring textDocument/didChange. It reports ok == false if uri is not
// open.
func (s *DocumentStore) UpdateDocument(uri, text string, version int) (err error, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, found := s.docs[uri]
	if !found {
		return nil, false
	}
	return doc.Update(text, version), true
}

// RemoveDocument drops uri from the store, mirroring textDocument/didClose.
func (s *DocumentStore) RemoveDocument(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// GetDocument returns the document at uri, or nil if absent.
func (s *DocumentStore) GetDocument(uri string) *document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// IterDocuments calls fn for every document currently in the store, in
// ascending URI order.
func (s *DocumentStore) IterDocuments(fn func(uri string, doc *document.Document)) {
	s.mu.RLock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	docs := make([]*document.Document, len(uris))
	for i, uri := range uris {
		docs[i] = s.docs[uri]
	}
	s.mu.RUnlock()

	for i, uri := range uris {
		fn(uri, docs[i])
	}
}

// ReferringDocument pairs a Reference with the URI of the document it was
// extracted from, for cross-document queries like find-references.
type ReferringDocument struct {
	URI string
	Ref reference.Reference
}

// IterReferencesWithURI returns every reference across every open document,
// each tagged with its owning document's URI.
func (s *DocumentStore) IterReferencesWithURI() []ReferringDocument {
	var out []ReferringDocument
	s.IterDocuments(func(uri string, doc *document.Document) {
		for _, ref := range doc.References() {
			out = append(out, ReferringDocument{URI: uri, Ref: ref})
		}
	})
	return out
}

// Len reports the number of documents currently tracked.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// CrawlMarkdownFiles walks root and returns the paths (joined onto root as
// given, so relative when root is relative) of every `.md` file found,
// skipping dotfiles/dot-directories. It is used once, at
// startup, to seed the index from disk; no watch is kept afterward (see
// the no-file-watching invariant documented for this server).
func CrawlMarkdownFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".md") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// LoadWorkspace crawls root for Markdown files and opens each one into
// store at version 0, the version a document not yet touched by didOpen
// carries while still indexed from disk. A file that fails to read is
// logged and skipped; it never aborts the rest of the crawl.
func LoadWorkspace(ctx context.Context, root string, store *DocumentStore) error {
	paths, err := CrawlMarkdownFiles(root)
	if err != nil {
		return err
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			mdlog.FromContext(ctx).Warn("skipping unreadable file", "path", p, "error", err)
			continue
		}
		store.OpenDocument(PathToURI(p), string(data), 0)
	}
	return nil
}

// PathToURI renders an absolute filesystem path as a file:// URI.
func PathToURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return "file://" + abs
}

// URIToPath converts a file:// URI back to a filesystem path. Non-file URIs
// are returned unchanged.
func URIToPath(uri string) string {
	const prefix = "file://"
	if !strings.HasPrefix(uri, prefix) {
		return uri
	}
	return filepath.FromSlash(strings.TrimPrefix(uri, prefix))
}
