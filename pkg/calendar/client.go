package calendar

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/taskplan/pkg/auth"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Scopes are the OAuth scopes the publisher needs.
var Scopes = []string{
	gcal.CalendarEventsScope,
	gcal.CalendarReadonlyScope,
}

// EventService is the part of the Calendar API the publisher uses.
type EventService interface {
	Get(ctx context.Context, eventID string) (*gcal.Event, error)
	Insert(ctx context.Context, event *gcal.Event) (*gcal.Event, error)
	Patch(ctx context.Context, eventID string, patch *gcal.Event) (*gcal.Event, error)
	Delete(ctx context.Context, eventID string) error
}

// CalendarClient is a Google Calendar API client bound to one calendar.
type CalendarClient struct {
	srv        *gcal.Service
	calendarID string
}

func NewCalendarClient(srv *gcal.Service, calendarID string) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID}
}

// NewClient authenticates with the credentials in dir and looks up the
// calendar called calendarName.
func NewClient(ctx context.Context, dir, calendarName string) (*CalendarClient, error) {
	client, err := auth.GetClient(ctx, dir, Scopes)
	if err != nil {
		return nil, err
	}

	srv, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			return NewCalendarClient(srv, item.Id), nil
		}
	}
	return nil, fmt.Errorf("calendar '%s' not found", calendarName)
}

func (c *CalendarClient) Get(ctx context.Context, eventID string) (*gcal.Event, error) {
	return c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
}

func (c *CalendarClient) Insert(ctx context.Context, event *gcal.Event) (*gcal.Event, error) {
	return c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
}

// Patch performs a partial update on an event.
func (c *CalendarClient) Patch(ctx context.Context, eventID string, patch *gcal.Event) (*gcal.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

func (c *CalendarClient) Delete(ctx context.Context, eventID string) error {
	return c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
}
