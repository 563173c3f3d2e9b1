// Package service orchestrates the full lifecycle of a tracked download:
// provisional registration, best-effort metadata fetch, submission, identity
// reconciliation and hand-off to the poller.
package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"downtrack/internal/config"
	"downtrack/internal/domain"
	errpkg "downtrack/internal/errors"
	"downtrack/internal/metrics"
	"downtrack/internal/poller"
	"downtrack/internal/remote"
	"downtrack/internal/store"
)

// RemoteAPI is the slice of the remote client the tracker needs.
type RemoteAPI interface {
	FetchInfo(ctx context.Context, sourceURL string) (*remote.InfoResult, error)
	Submit(ctx context.Context, sourceURL, format string, audioOnly bool) (*remote.SubmitResult, error)
	Health(ctx context.Context) error
}

// Tracker is the task lifecycle controller. It owns record creation and
// identity reconciliation; everything after submission is the poller's job.
type Tracker struct {
	store       *store.Store
	client      RemoteAPI
	poller      *poller.Poller
	logger      *slog.Logger
	failedGrace time.Duration
	batchLimit  int
}

// NewTracker wires the controller to its collaborators.
func NewTracker(st *store.Store, client RemoteAPI, p *poller.Poller, cfg *config.Config, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:       st,
		client:      client,
		poller:      p,
		logger:      logger,
		failedGrace: cfg.FailedGrace,
		batchLimit:  cfg.BatchLimit,
	}
}

// StartDownload registers a download with the remote service and begins
// tracking it. The record is continuously visible in the store from the
// moment this returns the provisional id path: first under the provisional
// id, then, atomically, under the server-issued one.
//
// Submission-time failures terminate the task immediately: the record is
// marked failed with a visible message and scheduled for cleanup, and the
// error is returned to the caller.
func (t *Tracker) StartDownload(ctx context.Context, sourceURL, format string, audioOnly bool) (string, error) {
	provisionalID := "local-" + uuid.New().String()

	now := time.Now()
	task := &domain.Task{
		ID:        provisionalID,
		SourceURL: sourceURL,
		Title:     deriveTitle(sourceURL),
		Format:    format,
		AudioOnly: audioOnly,
		Status:    domain.StatusQueued,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := t.store.Create(task); err != nil {
		return "", err
	}
	metrics.TasksStarted.Inc()

	t.logger.Info("download registered",
		"task_id", provisionalID,
		"url", sourceURL,
		"format", format,
		"audio_only", audioOnly,
	)

	// Metadata is best-effort: a failed info call must not abort the
	// submission, the locally derived title just stays.
	if info, err := t.client.FetchInfo(ctx, sourceURL); err != nil {
		t.logger.Warn("info fetch failed, keeping derived title", "task_id", provisionalID, "error", err)
	} else if info.Title != "" {
		t.store.Update(provisionalID, domain.TaskUpdate{Title: &info.Title})
	}

	result, err := t.client.Submit(ctx, sourceURL, format, audioOnly)
	if err != nil {
		t.failTask(provisionalID, err.Error())
		t.logger.Error("submission failed", "task_id", provisionalID, "error", err)
		return "", err
	}

	// The client already rejects id-less responses; guard anyway so a
	// broken RemoteAPI implementation cannot leave an untrackable record.
	if result.TaskID == "" {
		err := &remote.ServiceError{Message: "download response carries no task id"}
		t.failTask(provisionalID, err.Error())
		return "", err
	}

	if err := t.store.Rekey(provisionalID, result.TaskID); err != nil {
		return "", err
	}

	t.poller.Track(result.TaskID)

	t.logger.Info("download submitted", "task_id", result.TaskID, "provisional_id", provisionalID)
	return result.TaskID, nil
}

// StartBatch starts one tracked download per source URL, a few at a time.
// It returns the server task ids of the downloads that were accepted; the
// first submission error is returned alongside whatever succeeded.
func (t *Tracker) StartBatch(ctx context.Context, urls []string, format string, audioOnly bool) ([]string, error) {
	ids := make([]string, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.batchLimit)

	for i, sourceURL := range urls {
		i, sourceURL := i, sourceURL
		g.Go(func() error {
			id, err := t.StartDownload(ctx, sourceURL, format, audioOnly)
			ids[i] = id
			return err
		})
	}

	err := g.Wait()

	accepted := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			accepted = append(accepted, id)
		}
	}
	return accepted, err
}

// Cancel removes the task record; the polling loop notices the removal on
// its next cycle and exits silently. Removal is the only cancellation
// mechanism, there is no separate token.
func (t *Tracker) Cancel(id string) error {
	if _, err := t.store.Get(id); err != nil {
		return errpkg.ErrTaskNotFound
	}
	t.store.Remove(id)
	t.logger.Info("download cancelled", "task_id", id)
	return nil
}

// Task returns the presentation snapshot of one tracked task.
func (t *Tracker) Task(id string) (domain.Snapshot, error) {
	task, err := t.store.Get(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return task.Snapshot(), nil
}

// Tasks returns presentation snapshots of every tracked task.
func (t *Tracker) Tasks() []domain.Snapshot {
	tasks := t.store.All()
	snapshots := make([]domain.Snapshot, 0, len(tasks))
	for i := range tasks {
		snapshots = append(snapshots, tasks[i].Snapshot())
	}
	return snapshots
}

// Health reports whether the remote job service is reachable.
func (t *Tracker) Health(ctx context.Context) error {
	if err := t.client.Health(ctx); err != nil {
		return errpkg.ErrServiceUnavailable
	}
	return nil
}

func (t *Tracker) failTask(id, message string) {
	failed := domain.StatusFailed
	zero := 0.0
	t.store.Update(id, domain.TaskUpdate{
		Status:   &failed,
		Progress: &zero,
		Error:    &message,
	})
	metrics.TasksFailed.Inc()
	t.store.RemoveAfter(id, t.failedGrace)
}

// deriveTitle produces a display label from the source URL until the remote
// service returns authoritative metadata.
func deriveTitle(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		return sourceURL
	}
	title := u.Host + u.Path
	return strings.TrimSuffix(title, "/")
}
