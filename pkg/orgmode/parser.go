package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/rs/zerolog/log"
)

// DefaultDuration is used for headlines without an :EFFORT: property.
const DefaultDuration = 1.0

var (
	headlineRegex = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s*(?:\[#([A-Z])\])?\s*(.*?)(?:\s+(:(\w+(:\w+)*):))?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{2,3})?(?:\s+(\d{1,2}:\d{2}))?>`)
	effortRegex   = regexp.MustCompile(`^:EFFORT:\s+(\d+)(?::(\d{2}))?\s*$`)
)

// ParseFile parses an Org-mode file into tasks.
func ParseFile(filePath string) ([]model.Task, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, filePath)
}

// Parse reads TODO and DONE headlines from r. Tasks come back without ids;
// the caller assigns them when it submits the task.
func Parse(r io.Reader, source string) ([]model.Task, error) {
	log.Debug().Str("mod", "orgmode").Str("source", source).Msg("parsing")
	scanner := bufio.NewScanner(r)
	var tasks []model.Task
	var current *model.Task

	flush := func() {
		if current != nil && current.Description != "" {
			tasks = append(tasks, *current)
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			matches := headlineRegex.FindStringSubmatch(line)
			if matches == nil {
				// Plain headline closes the previous entry.
				flush()
				continue
			}
			flush()
			current = &model.Task{
				Description: strings.TrimSpace(matches[3]),
				Duration:    DefaultDuration,
				Priority:    priorityFromCookie(matches[2]),
				Done:        matches[1] == "DONE",
			}
			continue
		}
		if current == nil {
			continue
		}

		if matches := deadlineRegex.FindStringSubmatch(line); matches != nil {
			if d := parseDeadline(matches[1], matches[2]); d != nil {
				current.Deadline = d
			}
		} else if matches := effortRegex.FindStringSubmatch(line); matches != nil {
			hours, _ := strconv.Atoi(matches[1])
			minutes := 0
			if matches[2] != "" {
				minutes, _ = strconv.Atoi(matches[2])
			}
			if effort := float64(hours) + float64(minutes)/60; effort > 0 {
				current.Duration = effort
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Pending drops the tasks already marked DONE.
func Pending(tasks []model.Task) []model.Task {
	var pending []model.Task
	for _, task := range tasks {
		if !task.Done {
			pending = append(pending, task)
		}
	}
	return pending
}

func priorityFromCookie(cookie string) model.Priority {
	switch cookie {
	case "A":
		return model.PriorityHigh
	case "C":
		return model.PriorityLow
	default:
		return model.PriorityMedium
	}
}

func parseDeadline(date, clock string) *model.Deadline {
	if clock == "" {
		d, err := model.ParseDeadline(date)
		if err != nil {
			return nil
		}
		return d
	}
	if len(clock) == 4 {
		clock = "0" + clock
	}
	if _, err := time.Parse("15:04", clock); err != nil {
		return nil
	}
	d, err := model.ParseDeadline(date + "T" + clock)
	if err != nil {
		return nil
	}
	return d
}
