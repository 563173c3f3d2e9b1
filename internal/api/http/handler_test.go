package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"downtrack/internal/domain"
	errpkg "downtrack/internal/errors"
)

type mockTracker struct {
	healthErr error
}

func (m *mockTracker) StartBatch(ctx context.Context, urls []string, format string, audioOnly bool) ([]string, error) {
	ids := make([]string, len(urls))
	for i := range urls {
		ids[i] = "T1"
	}
	return ids, nil
}

func (m *mockTracker) Task(id string) (domain.Snapshot, error) {
	if id == "missing" {
		return domain.Snapshot{}, errpkg.ErrTaskNotFound
	}
	return domain.Snapshot{ID: id, Title: "Demo", Status: domain.StatusDownloading, Progress: 40}, nil
}

func (m *mockTracker) Tasks() []domain.Snapshot {
	return []domain.Snapshot{
		{ID: "T1", Title: "Demo", Status: domain.StatusDownloading, Progress: 40},
	}
}

func (m *mockTracker) Cancel(id string) error {
	if id == "missing" {
		return errpkg.ErrTaskNotFound
	}
	return nil
}

func (m *mockTracker) Health(ctx context.Context) error {
	return m.healthErr
}

func newTestHandler() *DownloadHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDownloadHandler(&mockTracker{}, logger)
}

func TestDownloadHandler_CreateDownloads(t *testing.T) {
	handler := newTestHandler()

	body, _ := json.Marshal(domain.CreateDownloadRequest{
		URLs:   []string{"https://example.com/watch?v=abc"},
		Format: "720p",
	})
	req := httptest.NewRequest(http.MethodPost, "/downloads", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateDownloads(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var data domain.CreateDownloadResponse
	_ = json.NewDecoder(resp.Body).Decode(&data)
	assert.Equal(t, []string{"T1"}, data.TaskIDs)
}

func TestDownloadHandler_CreateDownloads_RejectsBadBody(t *testing.T) {
	handler := newTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{`},
		{name: "no urls", body: `{"urls":[]}`},
		{name: "not a url", body: `{"urls":["nope"]}`},
		{name: "loopback source", body: `{"urls":["http://127.0.0.1/v"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/downloads", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.CreateDownloads(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
		})
	}
}

func TestDownloadHandler_GetDownload(t *testing.T) {
	handler := newTestHandler()

	r := chi.NewRouter()
	r.Get("/downloads/{taskID}", handler.GetDownload)

	req := httptest.NewRequest(http.MethodGet, "/downloads/T1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot domain.Snapshot
	_ = json.NewDecoder(resp.Body).Decode(&snapshot)
	assert.Equal(t, "T1", snapshot.ID)
	assert.Equal(t, 40, snapshot.Progress)
}

func TestDownloadHandler_GetDownload_NotFound(t *testing.T) {
	handler := newTestHandler()

	r := chi.NewRouter()
	r.Get("/downloads/{taskID}", handler.GetDownload)

	req := httptest.NewRequest(http.MethodGet, "/downloads/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestDownloadHandler_CancelDownload(t *testing.T) {
	handler := newTestHandler()

	r := chi.NewRouter()
	r.Delete("/downloads/{taskID}", handler.CancelDownload)

	req := httptest.NewRequest(http.MethodDelete, "/downloads/T1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Result().StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/downloads/missing", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestDownloadHandler_Health(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewDownloadHandler(&mockTracker{}, logger)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.Health(w, req)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	handler = NewDownloadHandler(&mockTracker{healthErr: errpkg.ErrServiceUnavailable}, logger)
	w = httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Result().StatusCode)
}
