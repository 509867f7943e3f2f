package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dias221467/bucket-list/internal/repository"
	"github.com/Dias221467/bucket-list/internal/services"
	"github.com/Dias221467/bucket-list/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `[{"id":"a","text":"See the northern lights","createdAt":"2026-01-01T00:00:00Z","completedAt":null}]`

func newTestRouter(t *testing.T) (http.Handler, *repository.FileBlobRepository) {
	t.Helper()
	prev := logger.Log
	logger.Log = logger.Discard()
	t.Cleanup(func() { logger.Log = prev })

	repo, err := repository.NewFileBlobRepository(t.TempDir())
	require.NoError(t, err)
	return NewRouter(services.NewDocumentService(repo, "bucket-list.json")), repo
}

func do(t *testing.T, h http.Handler, method, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/bucket", r)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBucketHandler_GetEmpty(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "[]", rec.Body.String())
}

func TestBucketHandler_PostThenGet(t *testing.T) {
	h, repo := newTestRouter(t)

	rec := do(t, h, http.MethodPost, sampleDoc, map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	stored, err := repo.Fetch(context.Background(), "bucket-list.json")
	require.NoError(t, err)
	assert.JSONEq(t, sampleDoc, string(stored))

	rec = do(t, h, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, sampleDoc, rec.Body.String())
}

func TestBucketHandler_PostEmptyArrayReplaces(t *testing.T) {
	h, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, sampleDoc, nil).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, `[]`, nil).Code)

	rec := do(t, h, http.MethodGet, "", nil)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestBucketHandler_PostInvalid(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `nope`},
		{"object", `{"id":"a"}`},
		{"missing text", `[{"id":"a","createdAt":"2026-01-01T00:00:00Z","completedAt":null}]`},
		{"duplicate ids", `[` + sampleDoc[1:len(sampleDoc)-1] + `,` + sampleDoc[1:len(sampleDoc)-1] + `]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}

	assert.Equal(t, "[]", do(t, h, http.MethodGet, "", nil).Body.String())
}

func TestBucketHandler_GetStoredNonArray(t *testing.T) {
	h, repo := newTestRouter(t)
	require.NoError(t, repo.Put(context.Background(), "bucket-list.json", []byte(`{"items":[]}`)))

	rec := do(t, h, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestBucketHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rec := do(t, h, method, "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
	}
}

func TestRouter_CountsUnmatchedRequests(t *testing.T) {
	h, _ := newTestRouter(t)

	do(t, h, http.MethodPut, "", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `bucket_http_requests_total{method="PUT",status="405"}`)
	assert.Contains(t, body, `bucket_http_requests_total{method="GET",status="404"}`)
}

func TestBucketHandler_Options(t *testing.T) {
	h, _ := newTestRouter(t)

	t.Run("bare", func(t *testing.T) {
		rec := do(t, h, http.MethodOptions, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		rec := do(t, h, http.MethodOptions, "", map[string]string{
			"Origin":                         "http://example.com",
			"Access-Control-Request-Method":  "POST",
			"Access-Control-Request-Headers": "Content-Type",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("actual request carries origin header", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "", map[string]string{"Origin": "http://example.com"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestBucketHandler_StorageNotConfigured(t *testing.T) {
	prev := logger.Log
	logger.Log = logger.Discard()
	t.Cleanup(func() { logger.Log = prev })

	h := NewRouter(services.NewDocumentService(nil, "bucket-list.json"))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := do(t, h, method, `[]`, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, method)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp["error"], "MONGO_URI")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	do(t, h, http.MethodPost, sampleDoc, nil)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bucket_document_writes_total")
	assert.Contains(t, rec.Body.String(), "bucket_http_requests_total")
}
