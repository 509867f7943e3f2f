package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dias221467/bucket-list/internal/config"
	"github.com/Dias221467/bucket-list/internal/handlers"
	"github.com/Dias221467/bucket-list/internal/models"
	"github.com/Dias221467/bucket-list/internal/repository"
	"github.com/Dias221467/bucket-list/internal/services"
	"github.com/Dias221467/bucket-list/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	url  string
	repo *repository.FileBlobRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	repo, err := repository.NewFileBlobRepository(t.TempDir())
	require.NoError(t, err)
	srv := httptest.NewServer(handlers.NewRouter(services.NewDocumentService(repo, "bucket-list.json")))
	t.Cleanup(srv.Close)

	return &testServer{url: srv.URL + "/api/bucket", repo: repo}
}

func (s *testServer) stored(t *testing.T) []models.GoalItem {
	t.Helper()
	raw, err := s.repo.Fetch(context.Background(), "bucket-list.json")
	require.NoError(t, err)
	items, err := models.ParseDocumentStrict(raw)
	require.NoError(t, err)
	return items
}

func run(t *testing.T, endpoint string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(&config.ClientConfig{
		APIURL:   endpoint,
		Timeout:  5 * time.Second,
		LogLevel: "panic",
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList_Empty(t *testing.T) {
	srv := newTestServer(t)

	out, err := run(t, srv.url, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Bucket List")
	assert.Contains(t, out, "0%")
	assert.Contains(t, out, "No goals yet")
}

func TestAddDoneRemove(t *testing.T) {
	srv := newTestServer(t)

	out, err := run(t, srv.url, "add", "See", "the", "northern", "lights")
	require.NoError(t, err)
	assert.Contains(t, out, "added: See the northern lights")

	items := srv.stored(t)
	require.Len(t, items, 1)
	assert.Equal(t, "See the northern lights", items[0].Text)
	assert.False(t, items[0].Completed())

	out, err = run(t, srv.url, "done", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "completed: See the northern lights")
	items = srv.stored(t)
	require.Len(t, items, 1)
	assert.True(t, items[0].Completed())

	out, err = run(t, srv.url, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "1/1 done")

	out, err = run(t, srv.url, "done", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "reopened: See the northern lights")

	out, err = run(t, srv.url, "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "removed: See the northern lights")
	assert.Empty(t, srv.stored(t))
}

func TestList_FilterKeepsPositions(t *testing.T) {
	srv := newTestServer(t)

	_, err := run(t, srv.url, "add", "Learn Go")
	require.NoError(t, err)
	_, err = run(t, srv.url, "add", "Skydive")
	require.NoError(t, err)
	_, err = run(t, srv.url, "done", "2")
	require.NoError(t, err)

	out, err := run(t, srv.url, "ls", "--filter", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "2. ")
	assert.NotContains(t, out, "1. ")
	assert.Contains(t, out, "50%")

	out, err = run(t, srv.url, "ls", "-f", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "1. ")
	assert.NotContains(t, out, "2. ")

	_, err = run(t, srv.url, "ls", "--filter", "someday")
	assert.Error(t, err)
}

func TestIndexErrors(t *testing.T) {
	srv := newTestServer(t)

	_, err := run(t, srv.url, "add", "Learn Go")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
	}{
		{"zero", []string{"done", "0"}},
		{"past the end", []string{"rm", "2"}},
		{"not a number", []string{"done", "first"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, srv.url, tt.args...)
			assert.Error(t, err)
		})
	}

	assert.Len(t, srv.stored(t), 1)
}

func TestAdd_BlankText(t *testing.T) {
	srv := newTestServer(t)

	_, err := run(t, srv.url, "add", "   ")
	assert.Error(t, err)

	_, err = srv.repo.Fetch(context.Background(), "bucket-list.json")
	assert.ErrorIs(t, err, repository.ErrBlobNotFound)
}

func TestUnreachableEndpoint(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL + "/api/bucket"
	closed.Close()

	_, err := run(t, url, "add", "Skydive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestServerErrorOnLoad(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	srv := httptest.NewServer(handlers.NewRouter(services.NewDocumentService(nil, "bucket-list.json")))
	t.Cleanup(srv.Close)

	_, err := run(t, srv.URL+"/api/bucket", "add", "Skydive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not load bucket list")
}

func TestAdd_RefusesToOverwriteUnreadableDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "not an array",
			doc:  `{"items":[{"id":"a","text":"Keep me","createdAt":"2026-01-01T00:00:00Z","completedAt":null}]}`,
		},
		{
			name: "unreadable element",
			doc:  `[{"id":"a","text":"Keep me","createdAt":"2026-01-01T00:00:00Z","completedAt":null},{"id":"b","createdAt":""}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			ctx := context.Background()
			require.NoError(t, srv.repo.Put(ctx, "bucket-list.json", []byte(tt.doc)))

			_, err := run(t, srv.url, "add", "Skydive")
			require.Error(t, err)

			raw, err := srv.repo.Fetch(ctx, "bucket-list.json")
			require.NoError(t, err)
			assert.Equal(t, tt.doc, string(raw))
		})
	}
}

func TestInvalidEndpointURL(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	_, err := run(t, "ftp://example.com/bucket", "ls")
	assert.Error(t, err)
}
