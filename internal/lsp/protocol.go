package lsp

import (
	"encoding/json"

	"github.com/mdnotes/mdls/internal/buffer"
)

// Request and Response are the minimal JSON-RPC 2.0 envelopes this server
// reads and writes; params/result bodies are method-specific structs
// unmarshaled/marshaled on demand by each handler.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *RespError      `json:"error,omitempty"`
}

type RespError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Position and Range mirror the LSP wire shapes (lowerCamel field names);
// buffer.Position/buffer.Range are the same data in Go field-name form.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

func toPosition(p buffer.Position) Position { return Position{Line: p.Line, Character: p.Character} }
func toRange(r buffer.Range) Range          { return Range{Start: toPosition(r.Start), End: toPosition(r.End)} }

func fromPosition(p Position) buffer.Position {
	return buffer.Position{Line: p.Line, Character: p.Character}
}
func fromRange(r Range) buffer.Range {
	return buffer.Range{Start: fromPosition(r.Start), End: fromPosition(r.End)}
}

// Diagnostic is the LSP wire shape for a single diagnostic entry.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Source   string `json:"source,omitempty"`
}

// TextEdit replaces the text in Range with NewText.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// WorkspaceEdit is the minimal shape this server emits: a DocumentChanges
// sequence mixing CreateFile operations and TextDocumentEdit operations, in
// the order the client must apply them.
type WorkspaceEdit struct {
	DocumentChanges []any `json:"documentChanges"`
}

// CreateFile is a WorkspaceEdit resource operation creating a new file.
type CreateFile struct {
	Kind string `json:"kind"` // always "create"
	URI  string `json:"uri"`
}

// TextDocumentEdit edits one versioned document with a list of TextEdits.
type TextDocumentEdit struct {
	TextDocument struct {
		URI     string `json:"uri"`
		Version *int   `json:"version"`
	} `json:"textDocument"`
	Edits []TextEdit `json:"edits"`
}

// CodeAction is the minimal shape this server emits for the
// extract-header-and-section action.
type CodeAction struct {
	Title string        `json:"title"`
	Kind  string        `json:"kind"`
	Edit  WorkspaceEdit `json:"edit"`
}

// CompletionItem is the minimal shape this server emits/accepts.
type CompletionItem struct {
	Label         string `json:"label"`
	Kind          int    `json:"kind,omitempty"`
	InsertText    string `json:"insertText,omitempty"`
	Detail        string `json:"detail,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

const (
	completionItemKindFile = 17
	completionItemKindText = 1
)
