package domain

// TaskStatus represents the current state of a tracked download task.
type TaskStatus string

const (
	StatusQueued      TaskStatus = "queued"
	StatusDownloading TaskStatus = "downloading"
	StatusProcessing  TaskStatus = "processing"
	StatusRetrying    TaskStatus = "retrying"
	StatusCompleted   TaskStatus = "completed"
	StatusFailed      TaskStatus = "failed"
)

// String returns the string representation of TaskStatus.
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal returns true once no further polling may happen for a task.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsActive returns true while the remote service is actually working on the task.
func (s TaskStatus) IsActive() bool {
	return s == StatusDownloading || s == StatusProcessing
}

// ParseStatus maps a status string reported by the remote service to a
// TaskStatus. Unknown values are treated as a pending phase so the poller
// keeps waiting instead of dropping the task.
func ParseStatus(raw string) TaskStatus {
	switch TaskStatus(raw) {
	case StatusQueued, StatusDownloading, StatusProcessing, StatusRetrying, StatusCompleted, StatusFailed:
		return TaskStatus(raw)
	default:
		return StatusQueued
	}
}
