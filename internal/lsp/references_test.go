package lsp

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func openDoc(t *testing.T, s *Server, uri, text string) {
	t.Helper()
	s.dispatch(Request{Method: "textDocument/didOpen", Params: params(t, didOpenParams{
		TextDocument: struct {
			URI     string `json:"uri"`
			Text    string `json:"text"`
			Version int    `json:"version"`
		}{URI: uri, Text: text, Version: 1},
	})})
}

func references(t *testing.T, out *bytes.Buffer) []Location {
	t.Helper()
	data := out.Bytes()
	idx := bytes.LastIndex(data, []byte("\r\n\r\n"))
	var resp struct {
		Result []Location `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data[idx+4:], &resp))
	return resp.Result
}

func TestHandleReferencesOnHeaderExcludesDeclarationByDefault(t *testing.T) {
	s, out := newTestServer(t)
	openDoc(t, s, "file:///a.md", "# Target\nbody\n")
	openDoc(t, s, "file:///b.md", "see [[a#Target]]\n")
	openDoc(t, s, "file:///c.md", "see [Target](a.md#Target)\n")
	out.Reset()

	s.dispatch(Request{
		ID:     rawID(1),
		Method: "textDocument/references",
		Params: params(t, referenceParams{
			TextDocument: textDocumentIdentifier{URI: "file:///a.md"},
			Position:     Position{Line: 0, Character: 2},
		}),
	})

	locs := references(t, out)
	require.Len(t, locs, 2)
	for _, l := range locs {
		require.Contains(t, []string{"file:///b.md", "file:///c.md"}, l.URI)
	}
}

func TestHandleReferencesOnHeaderIncludesDeclarationWhenRequested(t *testing.T) {
	s, out := newTestServer(t)
	openDoc(t, s, "file:///a.md", "# Target\nbody\n")
	openDoc(t, s, "file:///b.md", "see [[a#Target]]\n")
	out.Reset()

	s.dispatch(Request{
		ID:     rawID(1),
		Method: "textDocument/references",
		Params: params(t, referenceParams{
			TextDocument: textDocumentIdentifier{URI: "file:///a.md"},
			Position:     Position{Line: 0, Character: 2},
			Context: struct {
				IncludeDeclaration bool `json:"includeDeclaration"`
			}{IncludeDeclaration: true},
		}),
	})

	locs := references(t, out)
	require.Len(t, locs, 2)
	require.Equal(t, "file:///a.md", locs[0].URI)
	require.Equal(t, 0, locs[0].Range.Start.Line)
	require.Contains(t, []string{locs[1].URI}, "file:///b.md")
}

func TestHandleReferencesOnWikiLinkFindsOtherLinksToSameTarget(t *testing.T) {
	s, out := newTestServer(t)
	openDoc(t, s, "file:///a.md", "# A\n")
	openDoc(t, s, "file:///b.md", "see [[a]]\n")
	openDoc(t, s, "file:///c.md", "also [[a]]\n")
	out.Reset()

	s.dispatch(Request{
		ID:     rawID(1),
		Method: "textDocument/references",
		Params: params(t, referenceParams{
			TextDocument: textDocumentIdentifier{URI: "file:///b.md"},
			Position:     Position{Line: 0, Character: 6},
		}),
	})

	locs := references(t, out)
	require.Len(t, locs, 1)
	require.Equal(t, "file:///c.md", locs[0].URI)
}

func TestHandleReferencesAtPositionWithNoReferenceReturnsEmpty(t *testing.T) {
	s, out := newTestServer(t)
	openDoc(t, s, "file:///a.md", "plain text\n")
	out.Reset()

	s.dispatch(Request{
		ID:     rawID(1),
		Method: "textDocument/references",
		Params: params(t, referenceParams{
			TextDocument: textDocumentIdentifier{URI: "file:///a.md"},
			Position:     Position{Line: 0, Character: 1},
		}),
	})

	locs := references(t, out)
	require.Empty(t, locs)
}
