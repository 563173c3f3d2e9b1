package domain

import (
	"time"
)

// Task is the record kept for one tracked remote download job. The ID starts
// as a locally generated provisional id and is replaced by the server-issued
// task id once submission succeeds; the rename is performed atomically by the
// store so observers never see a gap or a duplicate.
type Task struct {
	ID            string     `json:"id"`
	SourceURL     string     `json:"source_url"`
	Title         string     `json:"title"`
	Format        string     `json:"format"`
	AudioOnly     bool       `json:"audio_only"`
	Status        TaskStatus `json:"status"`
	Progress      float64    `json:"progress"`
	Speed         string     `json:"speed,omitempty"`
	Message       string     `json:"message,omitempty"`
	Error         string     `json:"error,omitempty"`
	Filename      string     `json:"filename,omitempty"`
	QueuePosition int        `json:"queue_position,omitempty"`
	RetryCount    int        `json:"retry_count,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// EstimatorCounter is the running counter of the synthetic progress
	// estimator. Internal bookkeeping, never exposed to presentation.
	EstimatorCounter float64 `json:"-"`
}

// TaskUpdate is a partial update merged into a Task record. Nil fields leave
// the current value untouched.
type TaskUpdate struct {
	Status           *TaskStatus
	Title            *string
	Progress         *float64
	Speed            *string
	Message          *string
	Error            *string
	Filename         *string
	QueuePosition    *int
	RetryCount       *int
	EstimatorCounter *float64
}

// Snapshot is the read-only view of a task handed to presentation code.
// Nothing beyond these fields is guaranteed to renderers.
type Snapshot struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Status   TaskStatus `json:"status"`
	Progress int        `json:"progress"`
	Speed    string     `json:"speed,omitempty"`
	Message  string     `json:"message,omitempty"`
	Error    string     `json:"error,omitempty"`
	Filename string     `json:"filename,omitempty"`
}

// Snapshot returns the presentation view of the task. Progress is rounded to
// a whole percent for display.
func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		ID:       t.ID,
		Title:    t.Title,
		Status:   t.Status,
		Progress: int(t.Progress + 0.5),
		Speed:    t.Speed,
		Message:  t.Message,
		Error:    t.Error,
		Filename: t.Filename,
	}
}

// Apply merges a partial update into the task and bumps UpdatedAt.
func (t *Task) Apply(u TaskUpdate) {
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Progress != nil {
		t.Progress = *u.Progress
	}
	if u.Speed != nil {
		t.Speed = *u.Speed
	}
	if u.Message != nil {
		t.Message = *u.Message
	}
	if u.Error != nil {
		t.Error = *u.Error
	}
	if u.Filename != nil {
		t.Filename = *u.Filename
	}
	if u.QueuePosition != nil {
		t.QueuePosition = *u.QueuePosition
	}
	if u.RetryCount != nil {
		t.RetryCount = *u.RetryCount
	}
	if u.EstimatorCounter != nil {
		t.EstimatorCounter = *u.EstimatorCounter
	}
	t.UpdatedAt = time.Now()
}
