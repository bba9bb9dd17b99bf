package render

import (
	"strconv"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

// TaskLine is one entry of the task list.
type TaskLine struct {
	ID          int64
	Description string
	Duration    string
	Priority    string
	Deadline    string
	Done        bool
}

// TaskSection is either the pending or the completed bucket. Placeholder is
// set when the bucket is empty.
type TaskSection struct {
	Title       string
	Placeholder string
	Lines       []TaskLine
}

type TaskList struct {
	Pending   TaskSection
	Completed TaskSection
}

// Tasks builds the two display buckets from a store partition.
func Tasks(pending, completed []model.Task) TaskList {
	return TaskList{
		Pending:   section("Pending", NoPendingTasks, pending),
		Completed: section("Completed", NoCompletedTasks, completed),
	}
}

func section(title, placeholder string, tasks []model.Task) TaskSection {
	s := TaskSection{Title: title}
	if len(tasks) == 0 {
		s.Placeholder = placeholder
		return s
	}
	for _, t := range tasks {
		line := TaskLine{
			ID:          t.ID,
			Description: t.Description,
			Duration:    FormatHours(t.Duration),
			Priority:    string(t.Priority),
			Done:        t.Done,
		}
		if t.HasDeadline() {
			line.Deadline = t.Deadline.Display()
		}
		s.Lines = append(s.Lines, line)
	}
	return s
}

func (l TaskLine) idString() string {
	return strconv.FormatInt(l.ID, 10)
}
