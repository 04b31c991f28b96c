package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAskSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload["sessionId"] != "doc-1" || payload["message"] != "find related docs" {
			t.Errorf("unexpected payload: %#v", payload)
		}
		json.NewEncoder(w).Encode(ChatResult{Success: true, Answer: "See [page 5]."})
	}))
	defer server.Close()

	client := NewHTTPClient(Config{Endpoint: server.URL})
	got, err := client.Ask(context.Background(), "doc-1", "find related docs")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !got.Success || got.Answer != "See [page 5]." {
		t.Fatalf("Ask() = %#v", got)
	}
}

func TestAskBackendFailureIsNotATransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResult{Success: false, Error: "document not processed yet"})
	}))
	defer server.Close()

	client := NewHTTPClient(Config{Endpoint: server.URL})
	got, err := client.Ask(context.Background(), "doc-1", "hello")
	if err != nil {
		t.Fatalf("success=false should not error, got %v", err)
	}
	if got.Success || got.Error != "document not processed yet" {
		t.Fatalf("Ask() = %#v", got)
	}
}

func TestAskHTTPErrorWrapsTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(Config{Endpoint: server.URL})
	_, err := client.Ask(context.Background(), "doc-1", "hello")

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if transportErr.Op != "chat" {
		t.Fatalf("Op = %q, want chat", transportErr.Op)
	}
}

func TestUploadSendsMultipartAndFillsFileName(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			file.Close()
			if header.Filename != "memo.txt" {
				t.Errorf("filename = %q", header.Filename)
			}
		}
		json.NewEncoder(w).Encode(UploadResult{Success: true, SessionID: "doc-9", TotalPages: 4})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "memo.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	client := NewHTTPClient(Config{Endpoint: server.URL})
	got, err := client.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !got.Success || got.SessionID != "doc-9" || got.TotalPages != 4 {
		t.Fatalf("Upload() = %#v", got)
	}
	if got.FileName != "memo.txt" {
		t.Fatalf("FileName = %q, want memo.txt (filled from path)", got.FileName)
	}
}

func TestDocumentInfo(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/doc-1/info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(DocumentInfo{Success: true, TotalPages: 12})
	}))
	defer server.Close()

	client := NewHTTPClient(Config{Endpoint: server.URL})
	got, err := client.DocumentInfo(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("DocumentInfo() error = %v", err)
	}
	if !got.Success || got.TotalPages != 12 {
		t.Fatalf("DocumentInfo() = %#v", got)
	}
}

func TestPageImageURL(t *testing.T) {
	t.Parallel()

	client := NewHTTPClient(Config{Endpoint: "http://backend.local"})

	got, err := client.PageImageURL("doc-1", 5)
	if err != nil {
		t.Fatalf("PageImageURL() error = %v", err)
	}
	if !strings.HasSuffix(got, "/documents/doc-1/pages/5/image") {
		t.Fatalf("PageImageURL() = %q", got)
	}

	if _, err := client.PageImageURL("doc-1", 0); err == nil {
		t.Fatal("page 0 should be rejected")
	}
	if _, err := client.PageImageURL("", 1); err == nil {
		t.Fatal("empty session id should be rejected")
	}
}

func TestProbePageCountSkipsNonPDF(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	got, err := ProbePageCount(path)
	if err != nil {
		t.Fatalf("ProbePageCount() error = %v", err)
	}
	if got != 0 {
		t.Fatalf("ProbePageCount(non-pdf) = %d, want 0", got)
	}
}
