package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SlotID is the id carried by a scheduled entry. The service uses the task
// id for the first slot of a task and "<id>_cont" for the slots it spills into.
type SlotID string

// UnmarshalJSON implements the json.Unmarshaler interface for SlotID.
func (s *SlotID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = SlotID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("slot id must be a number or a string: %w", err)
	}
	*s = SlotID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers and everything else as strings.
func (s SlotID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(s), 10, 64); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(string(s))
}

// TaskID returns the numeric task id, if the slot carries one.
func (s SlotID) TaskID() (int64, bool) {
	id, err := strconv.ParseInt(string(s), 10, 64)
	return id, err == nil
}

// ScheduledTask is the snapshot of a task assigned to one time slot.
type ScheduledTask struct {
	ID          SlotID    `json:"id"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Priority    Priority  `json:"priority"`
	Deadline    *Deadline `json:"deadline"`
	Done        bool      `json:"done"`
}

// HasDeadline reports whether the snapshot carries a usable deadline.
func (t ScheduledTask) HasDeadline() bool {
	return t.Deadline != nil && !t.Deadline.IsZero()
}

// Schedule maps a calendar day to its time slots. It is produced wholesale by
// the scheduling service and never edited in place.
type Schedule map[string]map[string]ScheduledTask

// Empty reports whether the schedule has no days at all.
func (s Schedule) Empty() bool {
	return len(s) == 0
}

// Slots counts the assigned (date, time) pairs.
func (s Schedule) Slots() int {
	n := 0
	for _, day := range s {
		n += len(day)
	}
	return n
}

// HasDeadline reports whether the task carries a usable deadline.
func (t Task) HasDeadline() bool {
	return t.Deadline != nil && !t.Deadline.IsZero()
}
