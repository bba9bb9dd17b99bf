// Package calendar mirrors generated schedules into a Google Calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/index"
	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/rs/zerolog/log"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

const mod = "calendar"

// Publisher keeps one calendar event per schedule slot. Each publish patches
// events for slots it already knows, creates the missing ones and deletes
// events whose slot the new schedule no longer has.
type Publisher struct {
	events EventService
	index  *index.EventIndex
	loc    *time.Location
}

func NewPublisher(events EventService, idx *index.EventIndex, loc *time.Location) *Publisher {
	if loc == nil {
		loc = time.Local
	}
	return &Publisher{events: events, index: idx, loc: loc}
}

func (p *Publisher) Publish(ctx context.Context, schedule model.Schedule) error {
	var errs []error
	keep := make(map[string]bool)

	dates := make([]string, 0, len(schedule))
	for date := range schedule {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		clocks := make([]string, 0, len(schedule[date]))
		for clock := range schedule[date] {
			clocks = append(clocks, clock)
		}
		sort.Strings(clocks)

		for _, clock := range clocks {
			key := SlotKey(date, clock)
			target, err := SlotToEvent(date, clock, schedule[date][clock], p.loc)
			if err != nil {
				log.Warn().Str("mod", mod).Str("slot", key).Err(err).Msg("skipping slot")
				continue
			}
			keep[key] = true
			if err := p.upsert(ctx, key, target); err != nil {
				errs = append(errs, fmt.Errorf("slot %s: %w", key, err))
			}
		}
	}

	for _, key := range p.index.Stale(keep) {
		eventID := p.index.Get(key)
		if err := p.events.Delete(ctx, eventID); err != nil && !gone(err) {
			errs = append(errs, fmt.Errorf("delete stale slot %s: %w", key, err))
			continue
		}
		p.index.Remove(key)
	}

	if err := p.index.Save(); err != nil {
		errs = append(errs, fmt.Errorf("save event index: %w", err))
	}
	log.Debug().Str("mod", mod).Int("slots", len(keep)).Int("indexed", p.index.Len()).Int("errors", len(errs)).Msg("published")
	return errors.Join(errs...)
}

func (p *Publisher) upsert(ctx context.Context, key string, target *gcal.Event) error {
	if eventID := p.index.Get(key); eventID != "" {
		existing, err := p.events.Get(ctx, eventID)
		if err == nil && existing.Status != "cancelled" {
			patch, err := EventNeedsUpdate(existing, target)
			if err != nil {
				return err
			}
			if patch != nil {
				if _, err := p.events.Patch(ctx, eventID, patch); err != nil {
					return err
				}
			}
			return nil
		}
		if err != nil && !gone(err) {
			return err
		}
	}

	created, err := p.events.Insert(ctx, target)
	if err != nil {
		return err
	}
	p.index.Set(key, created.Id)
	return nil
}

// gone reports whether the API says the event no longer exists.
func gone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
