// Package backend defines the contracts of the document-processing and chat
// collaborators the client talks to, plus an HTTP implementation. The core
// never parses or embeds documents itself; it only issues requests and
// applies the completions as discrete state transitions.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// UploadResult is the asynchronous completion of a document upload. On
// success the backend assigns the session id that keys the document.
type UploadResult struct {
	Success    bool   `json:"success"`
	SessionID  string `json:"sessionId"`
	FileName   string `json:"fileName"`
	TotalPages int    `json:"totalPages"`
	Error      string `json:"error,omitempty"`
}

// ChatResult is the completion of a chat turn. Error is set when Success is
// false; the caller turns it into a conversational assistant message rather
// than an exception.
type ChatResult struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DocumentInfo carries the authoritative page count for a document.
type DocumentInfo struct {
	Success    bool `json:"success"`
	TotalPages int  `json:"totalPages"`
}

// Client is the narrow interface the core consumes. Implementations own
// transport concerns (timeouts, retries); callers own cancellation via ctx.
type Client interface {
	Upload(ctx context.Context, path string) (UploadResult, error)
	Ask(ctx context.Context, sessionID, message string) (ChatResult, error)
	DocumentInfo(ctx context.Context, sessionID string) (DocumentInfo, error)
	PageImageURL(sessionID string, page int) (string, error)
	Name() string
}

// TransportError wraps a failed backend call with the operation that issued it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

const defaultHTTPTimeout = 2 * time.Minute

// Config describes how to build a backend client.
type Config struct {
	Endpoint   string
	HTTPClient *http.Client
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Uploads and chat generations can run long; the caller's context still
	// cancels earlier when needed.
	return &http.Client{Timeout: defaultHTTPTimeout}
}
