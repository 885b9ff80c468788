package lsp

import (
	"context"
	"encoding/json"

	"github.com/mdnotes/mdls/internal/config"
	"github.com/mdnotes/mdls/internal/mdlog"
	"github.com/mdnotes/mdls/internal/workspace"
)

type workspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

type initializeParams struct {
	RootURI               string                        `json:"rootUri"`
	WorkspaceFolders       []workspaceFolder             `json:"workspaceFolders"`
	InitializationOptions config.InitializationOptions  `json:"initializationOptions"`
}

// handleInitialize negotiates capabilities and walks every workspace
// folder recursively, opening every *.md file found at version 0.
func (s *Server) handleInitialize(ctx context.Context, req Request) {
	var p initializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			s.replyError(req.ID, -32602, "invalid params: initialize")
			return
		}
	}

	s.cfg = config.ApplyInitializationOptions(s.cfg, p.InitializationOptions)

	root := p.RootURI
	if root == "" && len(p.WorkspaceFolders) > 0 {
		root = p.WorkspaceFolders[0].URI
	}
	s.workspaceRoot = root

	folders := p.WorkspaceFolders
	if len(folders) == 0 && root != "" {
		folders = []workspaceFolder{{URI: root}}
	}
	for _, f := range folders {
		if err := workspace.LoadWorkspace(ctx, workspace.URIToPath(f.URI), s.store); err != nil {
			mdlog.FromContext(ctx).Warn("workspace load failed, continuing without it", "folder", f.URI, "error", err)
		}
	}

	caps := map[string]any{
		"positionEncoding": "utf-16",
		"textDocumentSync": map[string]any{
			"openClose": true,
			"change":    1, // Full
		},
		"hoverProvider":      true,
		"definitionProvider": true,
		"referencesProvider": true,
		"completionProvider": map[string]any{
			"triggerCharacters": []string{"#", "[", ":", "("},
			"resolveProvider":   true,
		},
		"codeActionProvider": map[string]any{
			"codeActionKinds": []string{"refactor.extract"},
		},
		"diagnosticProvider": map[string]any{
			"interFileDependencies": true,
			"workspaceDiagnostics":  true,
		},
		"workspace": map[string]any{
			"workspaceFolders": map[string]any{
				"supported": true,
			},
		},
	}
	s.reply(req.ID, map[string]any{
		"capabilities": caps,
		"serverInfo":   map[string]any{"name": "mdls", "version": Version},
	})
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type didOpenParams struct {
	TextDocument struct {
		URI     string `json:"uri"`
		Text    string `json:"text"`
		Version int    `json:"version"`
	} `json:"textDocument"`
}

func (s *Server) handleDidOpen(ctx context.Context, req Request) {
	var p didOpenParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		mdlog.FromContext(ctx).Warn("malformed didOpen params", "error", err)
		return
	}
	version := p.TextDocument.Version
	if version == 0 {
		version = 1
	}
	s.store.OpenDocument(p.TextDocument.URI, p.TextDocument.Text, version)
	s.publishDiagnostics(ctx, p.TextDocument.URI)
}

type contentChange struct {
	Text  string `json:"text"`
	Range *Range `json:"range,omitempty"`
}

type didChangeParams struct {
	TextDocument struct {
		URI     string `json:"uri"`
		Version int    `json:"version"`
	} `json:"textDocument"`
	ContentChanges []contentChange `json:"contentChanges"`
}

// handleDidChange applies only full-document content changes. A
// range-scoped (incremental) change is the Unsupported error kind:
// logged and ignored, never applied.
func (s *Server) handleDidChange(ctx context.Context, req Request) {
	var p didChangeParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		mdlog.FromContext(ctx).Warn("malformed didChange params", "error", err)
		return
	}
	if len(p.ContentChanges) == 0 {
		return
	}
	change := p.ContentChanges[len(p.ContentChanges)-1]
	if change.Range != nil {
		err := &UnsupportedChangeError{Method: "textDocument/didChange"}
		mdlog.FromContext(ctx).Warn(err.Error(), "uri", p.TextDocument.URI)
		return
	}

	err, ok := s.store.UpdateDocument(p.TextDocument.URI, change.Text, p.TextDocument.Version)
	if !ok {
		mdlog.FromContext(ctx).Warn("didChange for unknown document", "uri", p.TextDocument.URI)
		return
	}
	if err != nil {
		// Out-of-order update: version state machine requires v > v'.
		mdlog.FromContext(ctx).Warn("out-of-order didChange ignored", "uri", p.TextDocument.URI, "error", err)
		return
	}
	s.publishDiagnostics(ctx, p.TextDocument.URI)
}

func (s *Server) handleDidClose(ctx context.Context, req Request) {
	var p struct {
		TextDocument textDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		mdlog.FromContext(ctx).Warn("malformed didClose params", "error", err)
		return
	}
	s.store.RemoveDocument(p.TextDocument.URI)
	s.notify("textDocument/publishDiagnostics", map[string]any{
		"uri":         p.TextDocument.URI,
		"diagnostics": []Diagnostic{},
	})
}
