package orgmode

import (
	"strings"
	"testing"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

func TestParse(t *testing.T) {
	input := `#+TITLE: Week
* Notes
Some text.
* TODO [#A] Write report :work:
  DEADLINE: <2024-01-05 Fri>
  :PROPERTIES:
  :EFFORT: 2:30
  :END:
** TODO Call plumber
   DEADLINE: <2024-01-03 Wed 9:30>
* DONE [#C] Buy milk
* TODO
`
	tasks, err := Parse(strings.NewReader(input), "week.org")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d: %+v", len(tasks), tasks)
	}

	report := tasks[0]
	if report.Description != "Write report" {
		t.Errorf("Expected description 'Write report', got '%s'", report.Description)
	}
	if report.Priority != model.PriorityHigh {
		t.Errorf("Expected priority high, got %s", report.Priority)
	}
	if report.Duration != 2.5 {
		t.Errorf("Expected duration 2.5, got %v", report.Duration)
	}
	if !report.HasDeadline() || report.Deadline.String() != "2024-01-05" {
		t.Errorf("Expected deadline 2024-01-05, got %v", report.Deadline)
	}

	plumber := tasks[1]
	if plumber.Duration != DefaultDuration {
		t.Errorf("Expected default duration, got %v", plumber.Duration)
	}
	if plumber.Priority != model.PriorityMedium {
		t.Errorf("Expected priority medium, got %s", plumber.Priority)
	}
	if !plumber.HasDeadline() || plumber.Deadline.String() != "2024-01-03T09:30" {
		t.Errorf("Expected deadline 2024-01-03T09:30, got %v", plumber.Deadline)
	}

	if !tasks[2].Done || tasks[2].Priority != model.PriorityLow {
		t.Errorf("Expected a done low-priority task, got %+v", tasks[2])
	}

	pending := Pending(tasks)
	if len(pending) != 2 {
		t.Errorf("Expected 2 pending tasks, got %d", len(pending))
	}
}
