// Package poller drives the per-task polling loop: it schedules repeated
// status checks against the remote job service, backs off on transport
// failure, enforces the overall task deadline and writes every result into
// the task store through the progress estimator.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"downtrack/internal/config"
	"downtrack/internal/domain"
	"downtrack/internal/metrics"
	"downtrack/internal/progress"
	"downtrack/internal/remote"
	"downtrack/internal/store"
)

// StatusClient is the slice of the remote client the poller needs.
type StatusClient interface {
	Status(ctx context.Context, taskID string) (*remote.StatusResult, error)
}

// FileReadyFunc is invoked exactly once per task when the service reports a
// finished file. The poller is the single writer of this side effect, so a
// completed status observed across consecutive polls can never trigger the
// save hand-off twice.
type FileReadyFunc func(task domain.Task)

// Poller runs one goroutine per tracked task. Each loop is cancelled either
// by removing the record from the store or by closing the poller.
type Poller struct {
	store  *store.Store
	client StatusClient
	logger *slog.Logger

	interval       time.Duration
	timeout        time.Duration
	completedGrace time.Duration
	failedGrace    time.Duration

	onFileReady FileReadyFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Poller. onFileReady may be nil when no save hand-off is
// wired, e.g. in tests that only exercise the state machine.
func New(st *store.Store, client StatusClient, cfg *config.Config, onFileReady FileReadyFunc, logger *slog.Logger) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		store:          st,
		client:         client,
		logger:         logger,
		interval:       cfg.PollInterval,
		timeout:        cfg.PollTimeout,
		completedGrace: cfg.CompletedGrace,
		failedGrace:    cfg.FailedGrace,
		onFileReady:    onFileReady,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Track starts the polling loop for a task already present in the store
// under its server-issued id. The first status check happens immediately.
func (p *Poller) Track(taskID string) {
	p.wg.Add(1)
	go p.run(taskID)

	p.logger.Info("polling started", "task_id", taskID)
}

// Close stops all polling loops and waits for them to exit.
func (p *Poller) Close() {
	p.cancel()
	p.wg.Wait()
}

func (p *Poller) run(taskID string) {
	defer p.wg.Done()

	delay := time.Duration(0)
	for {
		if delay > 0 {
			select {
			case <-p.ctx.Done():
				return
			case <-time.After(delay):
			}
		}

		next, done := p.cycle(taskID)
		if done {
			return
		}
		delay = next
	}
}

// cycle performs one status check. It returns the delay before the next
// cycle, or done=true when the loop must stop (terminal status, overall
// timeout, cancelled record, or shutdown).
func (p *Poller) cycle(taskID string) (time.Duration, bool) {
	task, err := p.store.Get(taskID)
	if err != nil {
		// Record gone: the task was cancelled or cleaned up externally.
		p.logger.Debug("task record gone, stopping poll loop", "task_id", taskID)
		return 0, true
	}

	if task.Status.IsTerminal() {
		return 0, true
	}

	if time.Since(task.CreatedAt) > p.timeout {
		p.failTask(taskID, "download timed out", task.Progress)
		metrics.TasksTimedOut.Inc()
		p.logger.Warn("task exceeded overall timeout", "task_id", taskID, "created_at", task.CreatedAt)
		return 0, true
	}

	started := time.Now()
	result, err := p.client.Status(p.ctx, taskID)
	metrics.PollCycles.Inc()
	metrics.PollDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		if p.ctx.Err() != nil {
			return 0, true
		}
		// Transport failures and transient service errors alike never
		// surface to the user; they only stretch the next delay. Retries
		// are bounded by the overall timeout, not a counter.
		metrics.PollTransportErrors.Inc()
		p.logger.Debug("status poll failed, backing off", "task_id", taskID, "error", err)
		return 2 * p.interval, false
	}

	return p.applyResult(taskID, task, result)
}

func (p *Poller) applyResult(taskID string, task domain.Task, result *remote.StatusResult) (time.Duration, bool) {
	status := domain.ParseStatus(result.Status)

	switch status {
	case domain.StatusCompleted:
		p.completeTask(taskID, task, result)
		return 0, true

	case domain.StatusFailed:
		message := result.Error
		if message == "" {
			message = "download failed"
		}
		// Progress falls back to whatever the service last reported,
		// which is zero when it reported nothing at all.
		p.failTask(taskID, message, result.Progress)
		p.logger.Warn("task failed", "task_id", taskID, "error", message)
		return 0, true

	default:
		display, counter := progress.Next(result.Progress, status, task.EstimatorCounter)

		update := domain.TaskUpdate{
			Status:           &status,
			Progress:         &display,
			Speed:            &result.Speed,
			EstimatorCounter: &counter,
		}
		if result.Title != "" {
			update.Title = &result.Title
		}
		if result.Message != "" {
			update.Message = &result.Message
		}
		if result.QueuePosition > 0 {
			update.QueuePosition = &result.QueuePosition
		}
		if result.RetryCount > 0 {
			update.RetryCount = &result.RetryCount
		}

		if err := p.store.Update(taskID, update); err != nil {
			return 0, true
		}
		return p.interval, false
	}
}

func (p *Poller) completeTask(taskID string, task domain.Task, result *remote.StatusResult) {
	completed := domain.StatusCompleted
	full := 100.0
	noSpeed := ""

	update := domain.TaskUpdate{
		Status:   &completed,
		Progress: &full,
		Speed:    &noSpeed,
	}
	if result.Filename != "" {
		update.Filename = &result.Filename
	}
	if result.Title != "" {
		update.Title = &result.Title
	}

	if err := p.store.Update(taskID, update); err != nil {
		return
	}

	metrics.TasksCompleted.Inc()
	p.logger.Info("task completed", "task_id", taskID, "filename", result.Filename)

	if p.onFileReady != nil && task.Status != domain.StatusCompleted {
		if done, err := p.store.Get(taskID); err == nil {
			p.onFileReady(done)
		}
	}

	p.store.RemoveAfter(taskID, p.completedGrace)
}

func (p *Poller) failTask(taskID, message string, lastProgress float64) {
	failed := domain.StatusFailed
	noSpeed := ""

	update := domain.TaskUpdate{
		Status:   &failed,
		Progress: &lastProgress,
		Error:    &message,
		Speed:    &noSpeed,
	}
	if err := p.store.Update(taskID, update); err != nil {
		return
	}

	metrics.TasksFailed.Inc()
	p.store.RemoveAfter(taskID, p.failedGrace)
}
