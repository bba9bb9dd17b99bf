package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

var ErrDuplicateID = errors.New("task id already present")

// TaskStore holds the tasks of the current session in insertion order.
// It never talks to the network; callers mutate it only after the remote
// service has confirmed the change.
type TaskStore struct {
	mu    sync.RWMutex
	tasks []model.Task
}

func New() *TaskStore {
	return &TaskStore{}
}

// Load replaces the whole set. There is no merge: the last load wins.
func (s *TaskStore) Load(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]model.Task(nil), tasks...)
}

func (s *TaskStore) Add(task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(task.ID) >= 0 {
		return fmt.Errorf("add task %d: %w", task.ID, ErrDuplicateID)
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Remove drops the task with the given id. Unknown ids are ignored.
func (s *TaskStore) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
}

// MarkDone flags the task as done. It is a silent no-op for unknown ids and
// never clears the flag.
func (s *TaskStore) MarkDone(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.tasks[i].Done = true
	}
}

// Partition splits the tasks into pending and completed, each in insertion order.
func (s *TaskStore) Partition() (pending, completed []model.Task) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.Done {
			completed = append(completed, t)
		} else {
			pending = append(pending, t)
		}
	}
	return pending, completed
}

func (s *TaskStore) Get(id int64) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Tasks returns a copy of every task in insertion order.
func (s *TaskStore) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.tasks...)
}

// LastID is the largest id held, or 0 for an empty store.
func (s *TaskStore) LastID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last int64
	for _, t := range s.tasks {
		if t.ID > last {
			last = t.ID
		}
	}
	return last
}

func (s *TaskStore) indexOf(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
