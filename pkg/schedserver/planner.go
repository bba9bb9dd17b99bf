package schedserver

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
)

const (
	firstHour   = 9
	lastHour    = 17
	horizonDays = 7

	continuationPrefix = "(continued) "
)

var priorityWeights = map[model.Priority]int{
	model.PriorityHigh:   100,
	model.PriorityMedium: 50,
	model.PriorityLow:    20,
}

// Score ranks a task for placement: the priority weight plus a bonus that
// grows as the deadline gets closer.
func Score(task model.Task, now time.Time) int {
	score, ok := priorityWeights[task.Priority]
	if !ok {
		score = priorityWeights[model.PriorityMedium]
	}
	if !task.HasDeadline() || !task.Deadline.Parsed() {
		return score
	}

	// Whole days until the deadline, floored: a date-only deadline that
	// started earlier today already counts as overdue.
	days := int(math.Floor(task.Deadline.Time.Sub(now).Hours() / 24))
	switch {
	case days < 0:
		score += 1000
	case days == 0:
		score += 500
	case days == 1:
		score += 200
	case days <= 3:
		score += 100
	case days <= 7:
		score += 50
	}
	return score
}

// Plan assigns pending tasks to hourly slots between 09:00 and 17:00 over the
// next seven days, highest score first. A task occupies ceil(duration)
// consecutive slots; the first carries the task and the rest continuation
// entries. Tasks that do not fit anywhere are left out.
func Plan(tasks []model.Task, now time.Time) model.Schedule {
	ordered := append([]model.Task(nil), tasks...)
	scores := make(map[int64]int, len(ordered))
	for _, t := range ordered {
		scores[t.ID] = Score(t, now)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i].ID] > scores[ordered[j].ID]
	})

	hours := make([]string, 0, lastHour-firstHour+1)
	for h := firstHour; h <= lastHour; h++ {
		hours = append(hours, fmt.Sprintf("%02d:00", h))
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	schedule := model.Schedule{}

	for _, task := range ordered {
		if task.Done {
			continue
		}
		need := int(math.Ceil(task.Duration))
		if need < 1 {
			need = 1
		}
		if need > len(hours) {
			continue
		}

	days:
		for offset := 0; offset < horizonDays; offset++ {
			date := today.AddDate(0, 0, offset).Format(model.DateLayout)
			day := schedule[date]
			for start := 0; start+need <= len(hours); start++ {
				if !free(day, hours[start:start+need]) {
					continue
				}
				if day == nil {
					day = make(map[string]model.ScheduledTask)
					schedule[date] = day
				}
				day[hours[start]] = snapshot(task)
				for i := 1; i < need; i++ {
					day[hours[start+i]] = continuation(task)
				}
				break days
			}
		}
	}
	return schedule
}

func free(day map[string]model.ScheduledTask, hours []string) bool {
	for _, h := range hours {
		if _, taken := day[h]; taken {
			return false
		}
	}
	return true
}

func snapshot(t model.Task) model.ScheduledTask {
	return model.ScheduledTask{
		ID:          model.SlotID(fmt.Sprint(t.ID)),
		Description: t.Description,
		Duration:    t.Duration,
		Priority:    t.Priority,
		Deadline:    t.Deadline,
		Done:        t.Done,
	}
}

func continuation(t model.Task) model.ScheduledTask {
	s := snapshot(t)
	s.ID = model.SlotID(fmt.Sprintf("%d_cont", t.ID))
	s.Description = continuationPrefix + t.Description
	s.Duration = 0
	return s
}
