package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"downtrack/internal/domain"
	errpkg "downtrack/internal/errors"
	"downtrack/internal/validation"
)

// TrackerI defines the interface for the download tracking logic.
type TrackerI interface {
	StartBatch(ctx context.Context, urls []string, format string, audioOnly bool) ([]string, error)
	Task(id string) (domain.Snapshot, error)
	Tasks() []domain.Snapshot
	Cancel(id string) error
	Health(ctx context.Context) error
}

// DownloadHandler handles HTTP requests for tracked downloads.
type DownloadHandler struct {
	tracker   TrackerI
	validator *validator.Validate
	logger    *slog.Logger
}

// NewDownloadHandler creates a new DownloadHandler with the provided tracker and logger.
func NewDownloadHandler(tracker TrackerI, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{
		tracker:   tracker,
		validator: validator.New(),
		logger:    logger,
	}
}

// CreateDownloads handles POST /downloads: it starts tracking one download
// per source URL and returns the accepted server task ids.
func (h *DownloadHandler) CreateDownloads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.CreateDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validation.ValidateURLs(req.URLs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ids, err := h.tracker.StartBatch(ctx, req.URLs, req.Format, req.AudioOnly)
	if err != nil && len(ids) == 0 {
		h.logger.Error("failed to start downloads", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.logger.Info("downloads started", "count", len(ids))
	writeJSON(w, http.StatusAccepted, domain.CreateDownloadResponse{TaskIDs: ids})
}

// ListDownloads handles GET /downloads: snapshots of every tracked task.
func (h *DownloadHandler) ListDownloads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Tasks())
}

// GetDownload handles GET /downloads/{taskID}.
func (h *DownloadHandler) GetDownload(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	snapshot, err := h.tracker.Task(taskID)
	if err != nil {
		if errors.Is(err, errpkg.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.Error("failed to get task", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// CancelDownload handles DELETE /downloads/{taskID}: removing the record is
// the cancellation mechanism, the poll loop exits on its next cycle.
func (h *DownloadHandler) CancelDownload(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	if err := h.tracker.Cancel(taskID); err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /health. The tracker itself is always up; the response
// reports whether the remote job service is reachable as well.
func (h *DownloadHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"remote": "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"remote": "ok",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
