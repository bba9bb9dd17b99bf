// Package session wires the task store, the sync client, the renderer and
// the notifier together. Local state changes only after the scheduling
// service confirmed the mutation.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/harrisonrobin/taskplan/pkg/notify"
	"github.com/harrisonrobin/taskplan/pkg/render"
	"github.com/harrisonrobin/taskplan/pkg/store"
	"github.com/rs/zerolog/log"
)

const mod = "session"

// User-facing messages.
const (
	MsgLoadFailed       = "Could not load tasks"
	MsgTaskAdded        = "Task added"
	MsgAddFailed        = "Error adding task"
	MsgTaskDeleted      = "Task deleted"
	MsgDeleteFailed     = "Error deleting task"
	MsgTaskCompleted    = "Task completed"
	MsgCompleteFailed   = "Error completing task"
	MsgScheduleReady    = "Schedule generated"
	MsgGenerateFailed   = "Error generating schedule"
	MsgNoTasks          = "Add at least one task"
	MsgPublishFailed    = "Schedule generated but could not be published"
	MsgDescriptionEmpty = "Please describe the task"
)

var (
	// ErrSuperseded is returned by a generation whose result was discarded
	// because a newer one started.
	ErrSuperseded = errors.New("schedule generation superseded")
	ErrNoTasks    = errors.New("no tasks to schedule")
)

// Remote is the scheduling service as seen by the session.
type Remote interface {
	FetchAll(ctx context.Context) ([]model.Task, error)
	AddTask(ctx context.Context, task model.Task) error
	DeleteTask(ctx context.Context, id int64) error
	CompleteTask(ctx context.Context, id int64) error
	GenerateSchedule(ctx context.Context) (model.Schedule, error)
}

// Publisher mirrors a freshly generated schedule somewhere else.
type Publisher interface {
	Publish(ctx context.Context, schedule model.Schedule) error
}

type Session struct {
	store     *store.TaskStore
	remote    Remote
	notifier  notify.Notifier
	publisher Publisher
	actions   *Actions
	now       func() time.Time

	pubMu sync.Mutex

	mu        sync.Mutex
	schedule  model.Schedule
	view      render.View
	lastID    int64
	gen       uint64
	cancelGen context.CancelFunc
}

type Option func(*Session)

func WithStore(s *store.TaskStore) Option {
	return func(ss *Session) { ss.store = s }
}

func WithNotifier(n notify.Notifier) Option {
	return func(ss *Session) { ss.notifier = n }
}

func WithPublisher(p Publisher) Option {
	return func(ss *Session) { ss.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(ss *Session) { ss.now = now }
}

func New(remote Remote, opts ...Option) *Session {
	s := &Session{
		remote:  remote,
		actions: NewActions(),
		now:     time.Now,
		view:    render.Render(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = store.New()
	}
	if s.notifier == nil {
		s.notifier = notify.NewFlash()
	}
	s.rebuildActions()
	return s
}

// Start loads the service's task list into the store.
func (s *Session) Start(ctx context.Context) error {
	tasks, err := s.remote.FetchAll(ctx)
	if err != nil {
		s.fail(MsgLoadFailed, err)
		return fmt.Errorf("load tasks: %w", err)
	}
	s.store.Load(tasks)
	s.rebuildActions()
	log.Debug().Str("mod", mod).Int("tasks", len(tasks)).Msg("session started")
	return nil
}

// Close abandons any in-flight generation.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelGen != nil {
		s.cancelGen()
		s.cancelGen = nil
	}
	s.gen++
}

// AddTask validates the draft, gives it an id and submits it. The store is
// only touched once the service accepted the task. Adding does not
// regenerate the schedule.
func (s *Session) AddTask(ctx context.Context, draft model.Task) (model.Task, error) {
	if draft.Priority == "" {
		draft.Priority = model.PriorityMedium
	}
	if err := draft.Validate(); err != nil {
		msg := err.Error()
		if errors.Is(err, model.ErrEmptyDescription) {
			msg = MsgDescriptionEmpty
		}
		s.notify(notify.Error, msg)
		return model.Task{}, err
	}
	draft.Done = false
	draft.ID = s.nextID()

	if err := s.remote.AddTask(ctx, draft); err != nil {
		s.fail(MsgAddFailed, err)
		return model.Task{}, fmt.Errorf("add task: %w", err)
	}
	if err := s.store.Add(draft); err != nil {
		log.Error().Str("mod", mod).Int64("id", draft.ID).Msg("service accepted a task the store already holds")
		s.fail(MsgAddFailed, err)
		return model.Task{}, err
	}
	s.rebuildActions()
	s.notify(notify.Success, MsgTaskAdded)
	return draft, nil
}

// DeleteTask removes the task remotely, then locally, then regenerates.
func (s *Session) DeleteTask(ctx context.Context, id int64) error {
	if err := s.remote.DeleteTask(ctx, id); err != nil {
		s.fail(MsgDeleteFailed, err)
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	s.store.Remove(id)
	s.rebuildActions()
	s.regenerate(ctx)
	s.notify(notify.Success, MsgTaskDeleted)
	return nil
}

// CompleteTask marks the task done remotely, then locally, then regenerates.
func (s *Session) CompleteTask(ctx context.Context, id int64) error {
	if err := s.remote.CompleteTask(ctx, id); err != nil {
		s.fail(MsgCompleteFailed, err)
		return fmt.Errorf("complete task %d: %w", id, err)
	}
	s.store.MarkDone(id)
	s.rebuildActions()
	s.regenerate(ctx)
	s.notify(notify.Success, MsgTaskCompleted)
	return nil
}

// GenerateSchedule requests a fresh schedule. Generations form a single-slot
// queue: starting one cancels the one in flight, and only the newest may
// install its result. On failure the previous schedule stays in place.
func (s *Session) GenerateSchedule(ctx context.Context) (model.Schedule, error) {
	if s.store.Len() == 0 {
		s.notify(notify.Error, MsgNoTasks)
		return nil, ErrNoTasks
	}

	s.mu.Lock()
	s.gen++
	ticket := s.gen
	if s.cancelGen != nil {
		s.cancelGen()
	}
	gctx, cancel := context.WithCancel(ctx)
	s.cancelGen = cancel
	s.mu.Unlock()
	defer cancel()

	schedule, err := s.remote.GenerateSchedule(gctx)

	s.mu.Lock()
	if ticket != s.gen {
		s.mu.Unlock()
		log.Debug().Str("mod", mod).Uint64("ticket", ticket).Msg("dropping superseded schedule")
		return nil, ErrSuperseded
	}
	s.cancelGen = nil
	if err != nil {
		s.mu.Unlock()
		s.fail(MsgGenerateFailed, err)
		return nil, fmt.Errorf("generate schedule: %w", err)
	}
	if schedule == nil {
		schedule = model.Schedule{}
	}
	s.schedule = schedule
	s.view = render.Render(schedule)
	view := s.view
	s.mu.Unlock()

	log.Debug().Str("mod", mod).Uint64("ticket", ticket).Str("view", view.Describe()).Msg("schedule installed")
	s.notify(notify.Success, MsgScheduleReady)

	if s.publisher != nil {
		s.publish(ctx, ticket, schedule)
	}
	return schedule, nil
}

// publish mirrors an installed schedule. Publishes run one at a time and a
// schedule whose generation has since been superseded is not published, so
// the mirror always ends on the newest schedule.
func (s *Session) publish(ctx context.Context, ticket uint64, schedule model.Schedule) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	current := ticket == s.gen
	s.mu.Unlock()
	if !current {
		log.Debug().Str("mod", mod).Uint64("ticket", ticket).Msg("skipping publish of superseded schedule")
		return
	}
	if err := s.publisher.Publish(ctx, schedule); err != nil {
		s.fail(MsgPublishFailed, err)
	}
}

// Dispatch runs the handler bound to (id, action).
func (s *Session) Dispatch(ctx context.Context, id int64, action Action) error {
	return s.actions.Dispatch(ctx, id, action)
}

// Actions exposes the action table, mostly for views listing what a task offers.
func (s *Session) Actions() *Actions {
	return s.actions
}

// Schedule is the last schedule successfully generated, or nil.
func (s *Session) Schedule() model.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule
}

// View is the rendered form of Schedule.
func (s *Session) View() render.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) TaskList() render.TaskList {
	return render.Tasks(s.store.Partition())
}

func (s *Session) Store() *store.TaskStore {
	return s.store
}

func (s *Session) regenerate(ctx context.Context) {
	if _, err := s.GenerateSchedule(ctx); err != nil {
		log.Debug().Str("mod", mod).Err(err).Msg("regeneration after mutation did not install a schedule")
	}
}

func (s *Session) rebuildActions() {
	pending, completed := s.store.Partition()
	s.actions.Reset()
	for _, t := range pending {
		s.actions.Register(t.ID, ActionComplete, s.CompleteTask)
		s.actions.Register(t.ID, ActionDelete, s.DeleteTask)
	}
	for _, t := range completed {
		s.actions.Register(t.ID, ActionDelete, s.DeleteTask)
	}
}

func (s *Session) nextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.lastID
	if last := s.store.LastID(); last > prev {
		prev = last
	}
	s.lastID = model.NewTaskID(s.now(), prev)
	return s.lastID
}

func (s *Session) notify(level notify.Level, msg string) {
	s.notifier.Notify(notify.Notice{Level: level, Message: msg})
}

func (s *Session) fail(msg string, err error) {
	log.Warn().Str("mod", mod).Err(err).Msg(msg)
	s.notify(notify.Error, msg)
}
