package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

type Action string

const (
	ActionComplete Action = "complete"
	ActionDelete   Action = "delete"
)

var ErrNoAction = errors.New("no handler bound for this task and action")

// Handler runs an action against one task.
type Handler func(ctx context.Context, id int64) error

type actionKey struct {
	id     int64
	action Action
}

// Actions maps (task id, action) pairs to handlers so that the views never
// call into the session directly.
type Actions struct {
	mu       sync.RWMutex
	handlers map[actionKey]Handler
}

func NewActions() *Actions {
	return &Actions{handlers: make(map[actionKey]Handler)}
}

func (a *Actions) Register(id int64, action Action, h Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[actionKey{id, action}] = h
}

// Reset drops every binding.
func (a *Actions) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers = make(map[actionKey]Handler)
}

func (a *Actions) Lookup(id int64, action Action) (Handler, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	h, ok := a.handlers[actionKey{id, action}]
	return h, ok
}

// Bound lists the actions available for a task, sorted by name.
func (a *Actions) Bound(id int64) []Action {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []Action
	for k := range a.handlers {
		if k.id == id {
			out = append(out, k.action)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dispatch runs the handler bound to (id, action).
func (a *Actions) Dispatch(ctx context.Context, id int64, action Action) error {
	h, ok := a.Lookup(id, action)
	if !ok {
		return fmt.Errorf("%s task %d: %w", action, id, ErrNoAction)
	}
	return h(ctx, id)
}
