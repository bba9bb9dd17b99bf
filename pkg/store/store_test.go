package store

import (
	"errors"
	"testing"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

func task(id int64, done bool) model.Task {
	return model.Task{ID: id, Description: "task", Duration: 1, Priority: model.PriorityMedium, Done: done}
}

func ids(tasks []model.Task) []int64 {
	var out []int64
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPartitionKeepsInsertionOrder(t *testing.T) {
	s := New()
	for _, tk := range []model.Task{task(3, false), task(1, true), task(2, false), task(5, true), task(4, false)} {
		if err := s.Add(tk); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	pending, completed := s.Partition()
	if got := ids(pending); !equalIDs(got, []int64{3, 2, 4}) {
		t.Errorf("Expected pending [3 2 4], got %v", got)
	}
	if got := ids(completed); !equalIDs(got, []int64{1, 5}) {
		t.Errorf("Expected completed [1 5], got %v", got)
	}
}

func TestAddRejectsDuplicateID(t *testing.T) {
	s := New()
	if err := s.Add(task(1, false)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add(task(1, false)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 task, got %d", s.Len())
	}
}

func TestLoadReplaces(t *testing.T) {
	s := New()
	s.Add(task(1, false))
	s.Load([]model.Task{task(7, false), task(8, true)})

	if _, ok := s.Get(1); ok {
		t.Error("Expected task 1 to be gone after Load")
	}
	if got := ids(s.Tasks()); !equalIDs(got, []int64{7, 8}) {
		t.Errorf("Expected [7 8], got %v", got)
	}
	if s.LastID() != 8 {
		t.Errorf("Expected LastID 8, got %d", s.LastID())
	}
}

func TestLoadCopiesInput(t *testing.T) {
	in := []model.Task{task(1, false)}
	s := New()
	s.Load(in)
	in[0].Done = true
	if got, _ := s.Get(1); got.Done {
		t.Error("Expected store to be isolated from the caller's slice")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := New()
	s.Load([]model.Task{task(1, false), task(2, false)})

	s.Remove(1)
	s.Remove(1)

	pending, completed := s.Partition()
	if got := ids(pending); !equalIDs(got, []int64{2}) {
		t.Errorf("Expected pending [2], got %v", got)
	}
	if len(completed) != 0 {
		t.Errorf("Expected no completed tasks, got %v", ids(completed))
	}
}

func TestMarkDone(t *testing.T) {
	s := New()
	s.Load([]model.Task{task(1, false)})

	s.MarkDone(1)
	pending, completed := s.Partition()
	if len(pending) != 0 {
		t.Errorf("Expected no pending tasks, got %v", ids(pending))
	}
	if got := ids(completed); !equalIDs(got, []int64{1}) {
		t.Errorf("Expected completed [1], got %v", got)
	}

	s.MarkDone(1)
	if got, _ := s.Get(1); !got.Done {
		t.Error("Expected task to stay done")
	}

	s.MarkDone(99)
	if s.Len() != 1 {
		t.Errorf("Expected unknown id to be ignored, got %d tasks", s.Len())
	}
}
