package render

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

const (
	NoTasksScheduled = "No tasks scheduled"
	NoPendingTasks   = "No pending tasks"
	NoCompletedTasks = "No completed tasks yet"

	// Weekday, then day before month.
	dayLabelLayout = "Monday 02/01"
	timeLayout     = "15:04"
)

// Slot is one rendered (time, task) line: time, description, duration and,
// when present, deadline, in that order.
type Slot struct {
	Time        string
	Description string
	Duration    string
	Deadline    string
}

type Day struct {
	Date  string
	Label string
	Slots []Slot
}

// View is the display form of a schedule. An empty schedule renders as a
// placeholder rather than an empty grid.
type View struct {
	Empty       bool
	Placeholder string
	Days        []Day
}

// Render orders a schedule by date and then by time of day. It is a pure
// function of its input.
func Render(schedule model.Schedule) View {
	if schedule.Empty() {
		return View{Empty: true, Placeholder: NoTasksScheduled}
	}

	dates := make([]string, 0, len(schedule))
	for date := range schedule {
		dates = append(dates, date)
	}
	sortKeys(dates, model.DateLayout)

	view := View{Days: make([]Day, 0, len(dates))}
	for _, date := range dates {
		slots := schedule[date]
		times := make([]string, 0, len(slots))
		for t := range slots {
			times = append(times, t)
		}
		sortKeys(times, timeLayout)

		day := Day{Date: date, Label: dayLabel(date), Slots: make([]Slot, 0, len(times))}
		for _, t := range times {
			task := slots[t]
			slot := Slot{
				Time:        t,
				Description: task.Description,
				Duration:    FormatHours(task.Duration),
			}
			if task.HasDeadline() {
				slot.Deadline = task.Deadline.Display()
			}
			day.Slots = append(day.Slots, slot)
		}
		view.Days = append(view.Days, day)
	}
	return view
}

// sortKeys orders keys chronologically when they parse with layout. Keys
// that do not parse sort after the ones that do, by plain string order.
func sortKeys(keys []string, layout string) {
	parsed := make(map[string]time.Time, len(keys))
	for _, k := range keys {
		if t, err := time.Parse(layout, k); err == nil {
			parsed[k] = t
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, iok := parsed[keys[i]]
		tj, jok := parsed[keys[j]]
		switch {
		case iok && jok:
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
			return keys[i] < keys[j]
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
}

func dayLabel(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(dayLabelLayout)
}

// FormatHours prints a duration in hours the way the task list shows it, e.g. "1.5h".
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

// Describe is a one-line summary of a rendered view, used in logs.
func (v View) Describe() string {
	if v.Empty {
		return v.Placeholder
	}
	n := 0
	for _, d := range v.Days {
		n += len(d.Slots)
	}
	return fmt.Sprintf("%d slots over %d days", n, len(v.Days))
}
