package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

const DefaultTTL = 5 * time.Second

type Level int

const (
	Success Level = iota
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "success"
}

// Notice is a single piece of user feedback.
type Notice struct {
	Level   Level
	Message string
}

// Notifier surfaces the outcome of an operation to the user.
type Notifier interface {
	Notify(Notice)
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Flash keeps only the latest notice and lets it expire after a TTL. When an
// output writer is set, every notice is also echoed there as it arrives.
type Flash struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	out     io.Writer
	current *Notice
	expires time.Time
}

type Option func(*Flash)

func WithTTL(d time.Duration) Option {
	return func(f *Flash) {
		if d > 0 {
			f.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(f *Flash) { f.now = now }
}

func WithOutput(w io.Writer) Option {
	return func(f *Flash) { f.out = w }
}

func NewFlash(opts ...Option) *Flash {
	f := &Flash{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Notify replaces whatever notice is showing.
func (f *Flash) Notify(n Notice) {
	f.mu.Lock()
	f.current = &n
	f.expires = f.now().Add(f.ttl)
	out := f.out
	f.mu.Unlock()

	ev := log.Debug()
	if n.Level == Error {
		ev = log.Warn()
	}
	ev.Str("mod", "notify").Str("level", n.Level.String()).Msg(n.Message)

	if out != nil {
		fmt.Fprintln(out, Format(n))
	}
}

// Current returns the visible notice, if it has not expired yet.
func (f *Flash) Current() (Notice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Notice{}, false
	}
	if !f.now().Before(f.expires) {
		f.current = nil
		return Notice{}, false
	}
	return *f.current, true
}

// Format renders a notice for the terminal.
func Format(n Notice) string {
	if n.Level == Error {
		return errorStyle.Render("✗ " + n.Message)
	}
	return successStyle.Render("✓ " + n.Message)
}
