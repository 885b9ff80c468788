package lsp

import (
	"errors"
	"fmt"
)

// Sentinel errors every typed wrapper below is Is()-compatible with, so
// callers can test failure with errors.Is without caring which concrete
// type a handler returned.
var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrResolutionFailed  = errors.New("link resolution failed")
	ErrUnsupportedChange = errors.New("unsupported content change")
)

// DocumentNotFoundError reports that uri is not open in the store.
type DocumentNotFoundError struct {
	URI string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document not found: %s", e.URI)
}

func (e *DocumentNotFoundError) Is(target error) bool { return target == ErrDocumentNotFound }

// ResolutionError reports that target could not be mapped to a workspace
// document.
type ResolutionError struct {
	Target string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %s", e.Target, e.Reason)
}

func (e *ResolutionError) Is(target error) bool { return target == ErrResolutionFailed }

// UnsupportedChangeError reports a range-scoped (incremental) content
// change, which this server never accepts: text sync is Full-only.
type UnsupportedChangeError struct {
	Method string
}

func (e *UnsupportedChangeError) Error() string {
	return fmt.Sprintf("%s: incremental content changes are not supported", e.Method)
}

func (e *UnsupportedChangeError) Is(target error) bool { return target == ErrUnsupportedChange }

// requestFailedCode is the JSON-RPC error code this server returns for
// every feature-handler failure, matching the LSP-standard RequestFailed
// code.
const requestFailedCode = -32803

// errorResponse maps err to the RespError the top-level dispatcher writes
// back to the client, type-switching through the wrapper types above. Every
// kind maps to the same JSON-RPC code today; the switch keeps each kind's
// message format under this module's control rather than leaking err's raw
// Go formatting to clients.
func errorResponse(err error) *RespError {
	var notFound *DocumentNotFoundError
	var resolution *ResolutionError
	var unsupported *UnsupportedChangeError
	switch {
	case errors.As(err, &notFound):
		return &RespError{Code: requestFailedCode, Message: notFound.Error()}
	case errors.As(err, &resolution):
		return &RespError{Code: requestFailedCode, Message: resolution.Error()}
	case errors.As(err, &unsupported):
		return &RespError{Code: requestFailedCode, Message: unsupported.Error()}
	default:
		return &RespError{Code: requestFailedCode, Message: err.Error()}
	}
}
