// Package store holds the authoritative in-memory map of tracked tasks. It
// is the single source of truth read by presentation code and the sole
// shared mutable state between polling loops.
package store

import (
	"log/slog"
	"sync"
	"time"

	"downtrack/internal/domain"
	errpkg "downtrack/internal/errors"
)

// Store is a mutex-guarded task map. All reads hand out copies so callers
// can iterate and render without racing against in-place field mutation.
type Store struct {
	mu     sync.RWMutex
	tasks  map[string]*domain.Task
	logger *slog.Logger
}

// New creates an empty Store. Stores are plain values, not singletons, so
// tests can run several independent trackers side by side.
func New(logger *slog.Logger) *Store {
	return &Store{
		tasks:  make(map[string]*domain.Task),
		logger: logger,
	}
}

// Create registers a new task record under its (usually provisional) id.
func (s *Store) Create(task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return errpkg.ErrTaskAlreadyExists
	}

	clone := *task
	s.tasks[task.ID] = &clone

	s.logger.Debug("task record created", "task_id", task.ID, "status", task.Status)
	return nil
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists {
		return domain.Task{}, errpkg.ErrTaskNotFound
	}
	return *task, nil
}

// Rekey renames a record from its provisional id to the server-issued one.
// The swap happens under a single lock: at no point do both ids resolve, and
// the old id stops resolving in the same critical section the new one starts.
// Every other field is preserved.
func (s *Store) Rekey(oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[oldID]
	if !exists {
		return errpkg.ErrTaskNotFound
	}

	delete(s.tasks, oldID)
	task.ID = newID
	task.UpdatedAt = time.Now()
	s.tasks[newID] = task

	s.logger.Debug("task record rekeyed", "old_id", oldID, "new_id", newID)
	return nil
}

// Update merges a partial update into the task. A missing id is reported as
// ErrTaskNotFound and is not fatal to callers: the record may simply have
// been cleaned up already.
func (s *Store) Update(id string, update domain.TaskUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return errpkg.ErrTaskNotFound
	}

	task.Apply(update)
	return nil
}

// Remove deletes the record. Removal doubles as cancellation: polling loops
// check record existence at the top of every cycle and exit silently once it
// is gone.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; exists {
		delete(s.tasks, id)
		s.logger.Debug("task record removed", "task_id", id)
	}
}

// RemoveAfter purges the record once the grace period elapses, so finished
// items clear from any UI without manual action.
func (s *Store) RemoveAfter(id string, grace time.Duration) {
	time.AfterFunc(grace, func() {
		s.Remove(id)
	})
}

// All returns a consistent snapshot of every tracked task as copies.
func (s *Store) All() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, *task)
	}
	return tasks
}

// Len returns the number of live task records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
