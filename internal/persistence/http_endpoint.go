package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var maxDocumentSize int64 = 8 << 20

// Endpoint is the remote single-document store.
type Endpoint interface {
	FetchDocument(ctx context.Context) ([]byte, error)
	ReplaceDocument(ctx context.Context, payload []byte) error
}

// HTTPEndpoint talks to the /api/bucket document endpoint.
type HTTPEndpoint struct {
	url    string
	client *http.Client
}

// NewHTTPEndpoint returns an endpoint client for the given document URL.
// A non-positive timeout falls back to 15 seconds.
func NewHTTPEndpoint(rawURL string, timeout time.Duration) (*HTTPEndpoint, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint url %q: scheme must be http or https", rawURL)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPEndpoint{
		url:    u.String(),
		client: &http.Client{Timeout: timeout},
	}, nil
}

// FetchDocument GETs the stored document.
func (e *HTTPEndpoint) FetchDocument(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrDocumentNotFound
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newServerError(resp, body)
	}
	if int64(len(body)) > maxDocumentSize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrDocumentTooLarge, maxDocumentSize)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrDocumentNotFound
	}
	return body, nil
}

// ReplaceDocument POSTs payload as the new full document.
func (e *HTTPEndpoint) ReplaceDocument(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newServerError(resp, body)
	}
	return nil
}

func newServerError(resp *http.Response, body []byte) *ServerError {
	msg := http.StatusText(resp.StatusCode)
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		msg = text
	}
	return &ServerError{StatusCode: resp.StatusCode, Message: msg}
}

// classifyTransportError separates "nothing answered" from timeouts and
// cancellations, which are ordinary failures.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return err
	}
	return fmt.Errorf("%w: %v", ErrEndpointUnreachable, err)
}
