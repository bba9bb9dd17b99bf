package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority accepts a priority name in any case. An empty string maps to medium.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q (want low, medium or high)", s)
	}
	return p, nil
}

var (
	ErrEmptyDescription = errors.New("task description is required")
	ErrInvalidDuration  = errors.New("task duration must be a positive number of hours")
	ErrInvalidPriority  = errors.New("task priority must be low, medium or high")
)

// Task is a unit of work tracked by the remote scheduling service.
type Task struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Priority    Priority  `json:"priority"`
	Deadline    *Deadline `json:"deadline"`
	Done        bool      `json:"done"`
}

// Validate checks the fields a task needs before it can be sent to the service.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Duration <= 0 {
		return ErrInvalidDuration
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// NewTaskID returns a millisecond timestamp id that is strictly greater than prev.
func NewTaskID(now time.Time, prev int64) int64 {
	id := now.UnixMilli()
	if id <= prev {
		id = prev + 1
	}
	return id
}
