package server

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// TaskStatus is the lifecycle state of a processing task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskError      TaskStatus = "error"
)

// TaskResult describes a finished render
type TaskResult struct {
	URL           string  `json:"url"`
	Filename      string  `json:"filename"`
	Duration      float64 `json:"duration"`
	SampleRate    int     `json:"sample_rate"`
	FrequencyBins int     `json:"frequency_bins"`
	TimeFrames    int     `json:"time_frames"`
}

// Task is one asynchronous processing job
type Task struct {
	ID        string      `json:"task_id"`
	Status    TaskStatus  `json:"status"`
	Progress  int         `json:"progress"` // 0..100
	Message   string      `json:"message"`
	Result    *TaskResult `json:"result,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// TaskStore is an in-memory task registry safe for concurrent handlers
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewTaskStore creates an empty store
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*Task),
	}
}

// Create registers a new pending task and returns it
func (s *TaskStore) Create() *Task {
	task := &Task{
		ID:        newTaskID(),
		Status:    TaskPending,
		Message:   "task created",
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	return task
}

// Get returns a snapshot of the task
func (s *TaskStore) Get(id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return *task, nil
}

// SetProgress moves the task to processing with the given progress and
// message. Progress never moves backward.
func (s *TaskStore) SetProgress(id string, progress int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return
	}
	task.Status = TaskProcessing
	if progress > task.Progress {
		task.Progress = progress
	}
	if message != "" {
		task.Message = message
	}
}

// Complete marks the task finished with its result
func (s *TaskStore) Complete(id string, result *TaskResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return
	}
	task.Status = TaskCompleted
	task.Progress = 100
	task.Message = "processing complete"
	task.Result = result
}

// Fail marks the task errored with the failure message
func (s *TaskStore) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return
	}
	task.Status = TaskError
	task.Message = err.Error()
}

// newTaskID returns a random 16-hex-character identifier
func newTaskID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Fall back to a time-derived id; collisions are harmless for
		// an in-memory store.
		return hex.EncodeToString([]byte(time.Now().Format("150405.000")))[:16]
	}
	return hex.EncodeToString(b[:])
}
