package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TNTKien/repo-timeline/internal/models"
	"github.com/TNTKien/repo-timeline/internal/session"
)

type fetchFunc func(ctx context.Context, req models.PageRequest) (*models.Snapshot, error)

type stubFetcher struct {
	mu       sync.Mutex
	fn       fetchFunc
	requests []models.PageRequest
}

func (f *stubFetcher) FetchPage(ctx context.Context, req models.PageRequest) (*models.Snapshot, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.fn(ctx, req)
}

func ts(day int) models.Timestamp {
	return models.NewTimestamp(time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC))
}

// pagedSnapshots serves [A, B] on page 1 and [B, C] on page 2.
func pagedSnapshots(_ context.Context, req models.PageRequest) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Repository: req.Repository,
		Pagination: models.Pagination{Page: req.Page, PerPage: req.PerPage, HasNextPage: req.Page == 1},
	}
	author := models.Author{Login: "octocat"}
	switch req.Page {
	case 1:
		snap.Items = []models.TimelineItem{
			{ID: "A", Kind: models.KindCommit, CreatedAt: ts(10), Author: author},
			{ID: "B", Kind: models.KindIssue, CreatedAt: ts(8), Author: author, State: "open", Number: 2},
		}
	default:
		snap.Items = []models.TimelineItem{
			{ID: "B", Kind: models.KindIssue, CreatedAt: ts(8), Author: author, State: "open", Number: 2},
			{ID: "C", Kind: models.KindPullRequest, CreatedAt: ts(5), Author: author, State: "closed", Number: 3},
		}
	}
	return snap, nil
}

func newTestApp(fetcher *stubFetcher) (*fiber.App, *session.Store) {
	store := session.NewStore()
	log := zap.NewNop().Sugar()
	h := NewHandler(log, fetcher, store, Options{DefaultPerPage: 30, RequestTimeout: time.Second})
	return NewApp(log, h), store
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

func ids(t *testing.T, timeline any) []string {
	t.Helper()
	items := timeline.(map[string]any)["items"].([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.(map[string]any)["id"].(string))
	}
	return out
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(&stubFetcher{fn: pagedSnapshots})
	resp, body := doRequest(t, app, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestGetTimeline(t *testing.T) {
	fetcher := &stubFetcher{fn: pagedSnapshots}
	app, _ := newTestApp(fetcher)

	resp, body := doRequest(t, app, http.MethodGet, "/api/github/timeline?owner=octo&repo=hello&page=2&perPage=10&filter=issue", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, map[string]any{"owner": "octo", "repo": "hello"}, body["repository"])
	assert.Equal(t, map[string]any{"page": float64(2), "perPage": float64(10), "hasNextPage": false}, body["pagination"])
	assert.Equal(t, []string{"B", "C"}, ids(t, body))

	require.Len(t, fetcher.requests, 1)
	assert.Equal(t, models.FilterIssue, fetcher.requests[0].Filter)
}

func TestGetTimeline_Defaults(t *testing.T) {
	fetcher := &stubFetcher{fn: pagedSnapshots}
	app, _ := newTestApp(fetcher)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/github/timeline?owner=octo&repo=hello", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, fetcher.requests, 1)
	assert.Equal(t, models.PageRequest{
		Repository: models.Repository{Owner: "octo", Name: "hello"},
		Page:       1,
		PerPage:    30,
		Filter:     models.FilterAll,
	}, fetcher.requests[0])
}

func TestGetTimeline_CommitItemOmitsStateAndNumber(t *testing.T) {
	app, _ := newTestApp(&stubFetcher{fn: pagedSnapshots})
	_, body := doRequest(t, app, http.MethodGet, "/api/github/timeline?owner=octo&repo=hello", "")

	items := body["items"].([]any)
	commit := items[0].(map[string]any)
	assert.Equal(t, "commit", commit["type"])
	assert.NotContains(t, commit, "state")
	assert.NotContains(t, commit, "number")
	assert.Equal(t, "2024-01-10T00:00:00Z", commit["createdAt"])
}

func TestGetTimeline_MissingOwnerOrRepo(t *testing.T) {
	fetcher := &stubFetcher{fn: pagedSnapshots}
	app, _ := newTestApp(fetcher)

	resp, body := doRequest(t, app, http.MethodGet, "/api/github/timeline?owner=octo", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing owner or repo parameters", body["error"])
	assert.Empty(t, fetcher.requests)
}

func TestGetTimeline_InvalidParams(t *testing.T) {
	fetcher := &stubFetcher{fn: pagedSnapshots}
	app, _ := newTestApp(fetcher)

	for _, target := range []string{
		"/api/github/timeline?owner=o&repo=r&filter=wiki",
		"/api/github/timeline?owner=o&repo=r&perPage=1000",
		"/api/github/timeline?owner=o&repo=r&page=-1",
	} {
		resp, body := doRequest(t, app, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		assert.Equal(t, "Invalid request", body["error"], target)
	}
	assert.Empty(t, fetcher.requests)
}

func TestGetTimeline_UpstreamFailure(t *testing.T) {
	tests := []struct {
		name   string
		err    *models.UpstreamError
		status int
	}{
		{"not found", &models.UpstreamError{Status: 404, Detail: "Not Found"}, http.StatusNotFound},
		{"rate limited", &models.UpstreamError{Status: 403, Detail: "API rate limit exceeded"}, http.StatusBadGateway},
		{"network", &models.UpstreamError{Detail: "connection refused"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(&stubFetcher{fn: func(context.Context, models.PageRequest) (*models.Snapshot, error) {
				return nil, tt.err
			}})

			resp, body := doRequest(t, app, http.MethodGet, "/api/github/timeline?owner=o&repo=r", "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "Failed to fetch repository data", body["error"])
			assert.Equal(t, tt.err.Detail, body["details"])
		})
	}
}

func TestGetActivity(t *testing.T) {
	app, _ := newTestApp(&stubFetcher{fn: pagedSnapshots})

	resp, body := doRequest(t, app, http.MethodGet, "/api/github/activity?owner=octo&repo=hello&top=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	act := body["activity"].(map[string]any)
	byType := act["activityByType"].([]any)
	require.Len(t, byType, 3)
	assert.Equal(t, float64(1), byType[0].(map[string]any)["count"])
	assert.Equal(t, float64(1), byType[2].(map[string]any)["count"])
	assert.Len(t, act["contributors"].([]any), 1)
	assert.Len(t, act["monthlyActivity"].([]any), 1)
}

func TestSessionLifecycle(t *testing.T) {
	fetcher := &stubFetcher{fn: pagedSnapshots}
	app, store := newTestApp(fetcher)

	resp, body := doRequest(t, app, http.MethodPost, "/api/sessions", `{"repository":"https://github.com/octo/hello"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)
	assert.Equal(t, float64(2), body["added"])
	assert.Equal(t, []string{"A", "B"}, ids(t, body["timeline"]))
	assert.Equal(t, 1, store.Len())

	resp, body = doRequest(t, app, http.MethodPost, "/api/sessions/"+id+"/more", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["added"])
	assert.Equal(t, []string{"A", "B", "C"}, ids(t, body["timeline"]))

	resp, body = doRequest(t, app, http.MethodGet, "/api/sessions/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"A", "B", "C"}, ids(t, body["timeline"]))

	resp, body = doRequest(t, app, http.MethodGet, "/api/sessions/"+id+"/activity", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	contributors := body["activity"].(map[string]any)["contributors"].([]any)
	assert.Equal(t, float64(3), contributors[0].(map[string]any)["contributions"])

	resp, body = doRequest(t, app, http.MethodPut, "/api/sessions/"+id+"/filter", `{"filter":"commit"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"A", "B"}, ids(t, body["timeline"]))
	last := fetcher.requests[len(fetcher.requests)-1]
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, models.FilterCommit, last.Filter)

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doRequest(t, app, http.MethodGet, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "session not found", body["error"])
}

func TestCreateSession_InvalidRepository(t *testing.T) {
	fetcher := &stubFetcher{fn: pagedSnapshots}
	app, store := newTestApp(fetcher)

	resp, body := doRequest(t, app, http.MethodPost, "/api/sessions", `{"repository":"not a repo"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request", body["error"])
	assert.Empty(t, fetcher.requests)
	assert.Zero(t, store.Len())
}

func TestCreateSession_UpstreamFailureStoresNothing(t *testing.T) {
	app, store := newTestApp(&stubFetcher{fn: func(context.Context, models.PageRequest) (*models.Snapshot, error) {
		return nil, &models.UpstreamError{Detail: "Bad credentials", Status: 401}
	}})

	resp, body := doRequest(t, app, http.MethodPost, "/api/sessions", `{"repository":"octo/hello"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Bad credentials", body["details"])
	assert.Zero(t, store.Len())
}

func TestLoadMore_FailureKeepsSession(t *testing.T) {
	fail := false
	fetcher := &stubFetcher{fn: func(ctx context.Context, req models.PageRequest) (*models.Snapshot, error) {
		if fail {
			return nil, &models.UpstreamError{Detail: "API rate limit exceeded"}
		}
		return pagedSnapshots(ctx, req)
	}}
	app, _ := newTestApp(fetcher)

	_, body := doRequest(t, app, http.MethodPost, "/api/sessions", `{"repository":"octo/hello"}`)
	id := body["id"].(string)

	fail = true
	resp, _ := doRequest(t, app, http.MethodPost, "/api/sessions/"+id+"/more", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	_, body = doRequest(t, app, http.MethodGet, "/api/sessions/"+id, "")
	assert.Equal(t, []string{"A", "B"}, ids(t, body["timeline"]))
}

func TestSetFilter_Invalid(t *testing.T) {
	app, _ := newTestApp(&stubFetcher{fn: pagedSnapshots})
	_, body := doRequest(t, app, http.MethodPost, "/api/sessions", `{"repository":"octo/hello"}`)
	id := body["id"].(string)

	resp, _ := doRequest(t, app, http.MethodPut, "/api/sessions/"+id+"/filter", `{"filter":"wiki"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownSession(t *testing.T) {
	app, _ := newTestApp(&stubFetcher{fn: pagedSnapshots})

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/sessions/nope/more"},
		{http.MethodGet, "/api/sessions/nope/activity"},
		{http.MethodDelete, "/api/sessions/nope"},
	} {
		resp, _ := doRequest(t, app, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.path)
	}
}
