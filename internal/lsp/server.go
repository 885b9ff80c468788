// Package lsp implements the JSON-RPC/stdio language server boundary: a
// Content-Length framed request loop dispatching to feature handlers over
// the document store, link resolver, and section extractor.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/mdnotes/mdls/internal/config"
	"github.com/mdnotes/mdls/internal/mdlog"
	"github.com/mdnotes/mdls/internal/workspace"
)

// Version is the server version reported in initialize's serverInfo and by
// `mdls version`.
const Version = "0.1.0"

// Server holds the single-threaded RPC loop's state: the document store,
// the resolved configuration, and I/O. All mutation happens on the one
// goroutine that calls Run; there is no internal task pool (see spec's
// concurrency model).
type Server struct {
	in  *bufio.Reader
	out io.Writer

	store         *workspace.DocumentStore
	cfg           config.Config
	workspaceRoot string // file:// URI, "" if the client gave none
	logger        *slog.Logger

	reqCount uint64
	errCount uint64
}

// NewServer constructs a Server reading framed JSON-RPC requests from r and
// writing framed responses/notifications to w.
func NewServer(r io.Reader, w io.Writer, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = mdlog.NewNop()
	}
	return &Server{
		in:     bufio.NewReader(r),
		out:    w,
		store:  workspace.NewDocumentStore(),
		cfg:    cfg,
		logger: logger,
	}
}

// Run implements the Content-Length framed JSON-RPC loop. It processes one
// message to completion before reading the next, matching the
// single-threaded cooperative scheduling model: exactly two suspension
// points, a blocking read and a blocking write, with all other work
// synchronous between them.
func (s *Server) Run() error {
	for {
		contentLength, err := s.readHeaders()
		if err != nil {
			return err
		}
		if contentLength < 0 {
			// Malformed frame: logged by readHeaders, drop and keep going.
			continue
		}

		lr := &io.LimitedReader{R: s.in, N: int64(contentLength)}
		dec := json.NewDecoder(lr)
		var req Request
		if err := dec.Decode(&req); err != nil {
			s.logger.Warn("malformed JSON-RPC frame, dropping", "error", err)
			if lr.N > 0 {
				_, _ = io.CopyN(io.Discard, lr, lr.N)
			}
			continue
		}
		if lr.N > 0 {
			_, _ = io.CopyN(io.Discard, lr, lr.N)
		}

		atomic.AddUint64(&s.reqCount, 1)
		s.logger.Debug("dispatching", "method", req.Method, "id", string(req.ID))

		if req.Method == "exit" {
			return nil
		}
		exit := s.dispatch(req)
		if exit {
			return nil
		}
	}
}

// readHeaders reads one frame's header block and returns its
// Content-Length, or -1 if the frame was malformed (already logged).
func (s *Server) readHeaders() (int, error) {
	contentLength := -1
	for {
		line, err := s.in.ReadString('\n')
		if err != nil {
			return 0, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(strings.ToLower(line[:idx]))
		if name == "content-length" {
			if n, err := strconv.Atoi(strings.TrimSpace(line[idx+1:])); err == nil {
				contentLength = n
			}
		}
	}
	if contentLength < 0 {
		s.logger.Warn("malformed JSON-RPC frame: missing Content-Length header")
	}
	return contentLength, nil
}

// dispatch routes one decoded request to its handler. It returns true when
// the server should stop after this message (method == "exit", handled by
// Run before reaching here, so this is always false today; kept for
// symmetry with Run's loop).
func (s *Server) dispatch(req Request) bool {
	ctx := mdlog.ContextWithLogger(context.Background(), s.logger)

	switch req.Method {
	case "initialize":
		s.handleInitialize(ctx, req)
	case "initialized":
		// Notification; nothing to do.
	case "shutdown":
		s.reply(req.ID, nil)
	case "textDocument/didOpen":
		s.handleDidOpen(ctx, req)
	case "textDocument/didChange":
		s.handleDidChange(ctx, req)
	case "textDocument/didClose":
		s.handleDidClose(ctx, req)
	case "textDocument/hover":
		s.handleHover(ctx, req)
	case "textDocument/definition":
		s.handleDefinition(ctx, req)
	case "textDocument/references":
		s.handleReferences(ctx, req)
	case "textDocument/completion":
		s.handleCompletion(ctx, req)
	case "completionItem/resolve":
		s.handleCompletionResolve(ctx, req)
	case "textDocument/codeAction":
		s.handleCodeAction(ctx, req)
	case "textDocument/diagnostic":
		s.handleDiagnostic(ctx, req)
	default:
		if len(req.ID) > 0 {
			s.replyError(req.ID, -32601, "method not found: "+req.Method)
		}
	}
	return false
}

func (s *Server) reply(id json.RawMessage, result any) {
	if len(id) == 0 {
		return
	}
	s.write(Response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) replyError(id json.RawMessage, code int, message string) {
	atomic.AddUint64(&s.errCount, 1)
	if len(id) == 0 {
		return
	}
	s.write(Response{JSONRPC: "2.0", ID: id, Error: &RespError{Code: code, Message: message}})
}

// replyErr maps a feature-handler error to a JSON-RPC error response via
// errorResponse, per the error-handling design's single mapping helper.
func (s *Server) replyErr(id json.RawMessage, err error) {
	atomic.AddUint64(&s.errCount, 1)
	if len(id) == 0 {
		return
	}
	s.write(Response{JSONRPC: "2.0", ID: id, Error: errorResponse(err)})
}

// notify sends a server-to-client notification (no id, no response
// expected).
func (s *Server) notify(method string, params any) {
	s.write(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

func (s *Server) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("failed to marshal outgoing message", "error", err)
		return
	}
	header := "Content-Length: " + strconv.Itoa(len(data)) + "\r\n\r\n"
	if _, err := io.WriteString(s.out, header); err != nil {
		return
	}
	_, _ = s.out.Write(data)
}

// RunStdio constructs a Server reading from stdin and writing to stdout and
// runs it. `mdls serve` does not call it: it builds the Server with
// NewServer so it can preload a --root workspace before calling Run.
func RunStdio(cfg config.Config, logger *slog.Logger, stdin io.Reader, stdout io.Writer) error {
	return NewServer(stdin, stdout, cfg, logger).Run()
}

// PreloadWorkspaceRoot crawls root for Markdown files and opens them at
// version 0, ahead of (and in addition to) whatever `initialize` later
// negotiates. It exists for `mdls serve --root DIR`, where a workspace is
// known before any client connects.
func (s *Server) PreloadWorkspaceRoot(root string) error {
	s.workspaceRoot = workspace.PathToURI(root)
	ctx := mdlog.ContextWithLogger(context.Background(), s.logger)
	return workspace.LoadWorkspace(ctx, root, s.store)
}
