package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	DateTimeLayout  = "2006-01-02T15:04"
	deadlineDisplay = "2006-01-02 15:04"
)

var deadlineLayouts = []string{DateLayout, DateTimeLayout, time.RFC3339}

// Deadline is an optional due date. It remembers the layout it was parsed
// with so that it is written back exactly as the service sent it. Text the
// service sent in no known layout is kept verbatim in raw; such a deadline is
// shown and sent back but never compared against a clock.
type Deadline struct {
	time.Time
	layout string
	raw    string
}

// ParseDeadline parses a date, a date with minutes, or an RFC3339 timestamp.
func ParseDeadline(s string) (*Deadline, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &Deadline{Time: t, layout: layout}, nil
		}
	}
	return nil, fmt.Errorf("failed to parse deadline '%s': want YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC3339", s)
}

// NewDeadline wraps t as a date-only deadline.
func NewDeadline(t time.Time) *Deadline {
	return &Deadline{Time: t, layout: DateLayout}
}

// IsZero reports whether the deadline carries neither a time nor raw text.
func (d Deadline) IsZero() bool {
	return d.Time.IsZero() && d.raw == ""
}

// Parsed reports whether the deadline is a point in time.
func (d Deadline) Parsed() bool {
	return d.raw == "" && !d.Time.IsZero()
}

// String formats the deadline in the layout it was parsed with.
func (d Deadline) String() string {
	if d.raw != "" {
		return d.raw
	}
	if d.layout == "" {
		return d.Time.Format(DateLayout)
	}
	return d.Time.Format(d.layout)
}

// Display is the human form used by the renderers.
func (d Deadline) Display() string {
	if d.raw != "" {
		return d.raw
	}
	if d.layout == DateLayout || d.layout == "" {
		return d.Time.Format(DateLayout)
	}
	return d.Time.Format(deadlineDisplay)
}

// Due is the instant the deadline passes. A date-only deadline lasts the
// whole day. It returns false for a deadline that is not a point in time.
func (d Deadline) Due() (time.Time, bool) {
	if !d.Parsed() {
		return time.Time{}, false
	}
	if d.layout == DateLayout || d.layout == "" {
		return d.Time.AddDate(0, 0, 1), true
	}
	return d.Time, true
}

// UnmarshalJSON implements the json.Unmarshaler interface for Deadline.
func (d *Deadline) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("deadline must be a string: %w", err)
	}
	parsed, err := ParseDeadline(s)
	if err != nil {
		*d = Deadline{raw: strings.TrimSpace(s)}
		return nil
	}
	if parsed == nil {
		*d = Deadline{}
		return nil
	}
	*d = *parsed
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Deadline.
func (d Deadline) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}
