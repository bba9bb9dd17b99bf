package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
	gcal "google.golang.org/api/calendar/v3"
)

const (
	slotProperty = "taskplan_slot"
	idProperty   = "taskplan_id"

	slotLayout = "2006-01-02 15:04"

	doneMarker    = "✓ "
	overdueMarker = "! "

	// One schedule slot is one hour; continuation entries carry no duration
	// of their own.
	slotLength = time.Hour
)

var priorityColors = map[model.Priority]string{
	model.PriorityHigh:   "11",
	model.PriorityMedium: "5",
	model.PriorityLow:    "2",
}

// SlotKey identifies a (date, time) slot across publishes.
func SlotKey(date, clock string) string {
	return date + " " + clock
}

// SlotToEvent converts one scheduled entry into a calendar event.
func SlotToEvent(date, clock string, task model.ScheduledTask, loc *time.Location) (*gcal.Event, error) {
	start, err := time.ParseInLocation(slotLayout, SlotKey(date, clock), loc)
	if err != nil {
		return nil, fmt.Errorf("slot %s %s is not a date and time: %w", date, clock, err)
	}
	length := time.Duration(task.Duration * float64(time.Hour))
	if length <= 0 {
		length = slotLength
	}
	end := start.Add(length)

	summary := task.Description
	switch {
	case task.Done:
		summary = doneMarker + summary
	case task.HasDeadline() && pastDue(task.Deadline, end):
		summary = overdueMarker + summary
	}

	var desc strings.Builder
	fmt.Fprintf(&desc, "Priority: %s\n", task.Priority)
	if task.Duration > 0 {
		fmt.Fprintf(&desc, "Duration: %gh\n", task.Duration)
	}
	if task.HasDeadline() {
		fmt.Fprintf(&desc, "Deadline: %s\n", task.Deadline.Display())
	}
	fmt.Fprintf(&desc, "Task: %s\n", task.ID)

	colorID, ok := priorityColors[task.Priority]
	if !ok {
		colorID = priorityColors[model.PriorityMedium]
	}

	return &gcal.Event{
		Summary:     summary,
		Description: desc.String(),
		ColorId:     colorID,
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{
				slotProperty: SlotKey(date, clock),
				idProperty:   string(task.ID),
			},
		},
	}, nil
}

func pastDue(d *model.Deadline, end time.Time) bool {
	due, ok := d.Due()
	return ok && end.After(due)
}

// EventNeedsUpdate returns a patch holding the fields of target that differ
// from existing, or nil when they match.
func EventNeedsUpdate(existing, target *gcal.Event) (*gcal.Event, error) {
	patch := &gcal.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}

	sameStart, err := sameTime(existing.Start, target.Start)
	if err != nil {
		return nil, err
	}
	sameEnd, err := sameTime(existing.End, target.End)
	if err != nil {
		return nil, err
	}
	if !sameStart || !sameEnd {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

func sameTime(a, b *gcal.EventDateTime) (bool, error) {
	if a == nil || b == nil || a.DateTime == "" || b.DateTime == "" {
		return false, nil
	}
	ta, err := time.Parse(time.RFC3339, a.DateTime)
	if err != nil {
		return false, err
	}
	tb, err := time.Parse(time.RFC3339, b.DateTime)
	if err != nil {
		return false, err
	}
	return ta.Equal(tb), nil
}
