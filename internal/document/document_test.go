package document_test

import (
	"testing"

	"github.com/mdnotes/mdls/internal/buffer"
	"github.com/mdnotes/mdls/internal/document"
	"github.com/mdnotes/mdls/internal/reference"
	"github.com/stretchr/testify/require"
)

func TestNewParsesAndExtractsReferences(t *testing.T) {
	doc := document.New("file:///a.md", "# Title\n\nsee [[b]]\n", 1)
	require.Equal(t, 1, doc.Version)
	require.Len(t, doc.References(), 2)
	require.Equal(t, reference.KindHeader, doc.References()[0].Kind)
	require.Equal(t, reference.KindWikiLink, doc.References()[1].Kind)
}

func TestUpdateRequiresMonotonicVersion(t *testing.T) {
	doc := document.New("file:///a.md", "# A\n", 1)
	require.NoError(t, doc.Update("# B\n", 2))
	require.Equal(t, 2, doc.Version)
	require.Equal(t, "B", doc.References()[0].Header.Content)

	err := doc.Update("# C\n", 2)
	require.Error(t, err)
	err = doc.Update("# C\n", 1)
	require.Error(t, err)
	require.Equal(t, 2, doc.Version)
	require.Equal(t, "B", doc.References()[0].Header.Content)
}

func TestUpdateRegeneratesReferencesAndDiagnosticsTogether(t *testing.T) {
	doc := document.New("file:///a.md", "[unterminated\n", 1)
	require.NotEmpty(t, doc.Diagnostics())

	require.NoError(t, doc.Update("# Clean\n", 2))
	require.Empty(t, doc.Diagnostics())
	require.Len(t, doc.References(), 1)
}

func TestGetReferenceAtPositionHalfOpen(t *testing.T) {
	doc := document.New("file:///a.md", "# Hello\n", 1)
	ref := doc.References()[0]

	inside := doc.GetReferenceAtPosition(buffer.Position{Line: 0, Character: 2})
	require.NotNil(t, inside)

	atEnd := doc.GetReferenceAtPosition(ref.Range.End)
	require.Nil(t, atEnd)

	miss := doc.GetReferenceAtPosition(buffer.Position{Line: 5, Character: 0})
	require.Nil(t, miss)
}

func TestByteRangeConversionsDelegateToBuffer(t *testing.T) {
	doc := document.New("file:///a.md", "café\n", 1)
	r := doc.ByteRangeToRange(buffer.Span{Start: 0, End: doc.Buffer().ByteLen()})
	back := doc.RangeToByteRange(r)
	require.Equal(t, 0, back.Start)
	require.Equal(t, doc.Buffer().ByteLen(), back.End)
}
