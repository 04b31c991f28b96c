package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type httpClient struct {
	base   string
	client *http.Client
}

// NewHTTPClient builds a Client against the configured endpoint.
func NewHTTPClient(cfg Config) Client {
	base := strings.TrimRight(cfg.Endpoint, "/")
	if base == "" {
		base = "http://localhost:8080"
	}
	return &httpClient{
		base:   base,
		client: pickHTTPClient(cfg.HTTPClient),
	}
}

func (c *httpClient) Name() string {
	return fmt.Sprintf("HTTP (%s)", c.base)
}

func (c *httpClient) Upload(ctx context.Context, path string) (UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return UploadResult{}, &TransportError{Op: "upload", Err: err}
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return UploadResult{}, &TransportError{Op: "upload", Err: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResult{}, &TransportError{Op: "upload", Err: err}
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, &TransportError{Op: "upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/upload", &body)
	if err != nil {
		return UploadResult{}, &TransportError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result UploadResult
	if err := c.do(req, "upload", &result); err != nil {
		return UploadResult{}, err
	}
	if result.FileName == "" {
		result.FileName = filepath.Base(path)
	}
	return result, nil
}

func (c *httpClient) Ask(ctx context.Context, sessionID, message string) (ChatResult, error) {
	payload := map[string]string{
		"sessionId": sessionID,
		"message":   message,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return ChatResult{}, &TransportError{Op: "chat", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/chat", bytes.NewReader(buf))
	if err != nil {
		return ChatResult{}, &TransportError{Op: "chat", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var result ChatResult
	if err := c.do(req, "chat", &result); err != nil {
		return ChatResult{}, err
	}
	return result, nil
}

func (c *httpClient) DocumentInfo(ctx context.Context, sessionID string) (DocumentInfo, error) {
	endpoint := fmt.Sprintf("%s/documents/%s/info", c.base, url.PathEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return DocumentInfo{}, &TransportError{Op: "document-info", Err: err}
	}

	var result DocumentInfo
	if err := c.do(req, "document-info", &result); err != nil {
		return DocumentInfo{}, err
	}
	return result, nil
}

// PageImageURL constructs the locator for one rendered page. The core only
// validates and builds the request; it never fetches or decodes image bytes.
func (c *httpClient) PageImageURL(sessionID string, page int) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("page image: empty session id")
	}
	if page < 1 {
		return "", fmt.Errorf("page image: page %d out of range", page)
	}
	return fmt.Sprintf("%s/documents/%s/pages/%d/image", c.base, url.PathEscape(sessionID), page), nil
}

func (c *httpClient) do(req *http.Request, op string, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode >= 400 {
		return &TransportError{Op: op, Err: fmt.Errorf("%s (%s)", resp.Status, truncate(string(body), 256))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
