package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true)
	dayStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	timeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	deadlineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	placeholderStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
)

// Printer writes rendered views as terminal text.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Schedule(v View) error {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Schedule"))
	b.WriteString("\n")
	if v.Empty {
		b.WriteString("  " + placeholderStyle.Render(v.Placeholder) + "\n")
		_, err := io.WriteString(p.w, b.String())
		return err
	}
	for _, day := range v.Days {
		b.WriteString(dayStyle.Render(day.Label))
		b.WriteString("\n")
		for _, s := range day.Slots {
			fmt.Fprintf(&b, "  %s  %s  %s", timeStyle.Render(s.Time), s.Description, dimStyle.Render(s.Duration))
			if s.Deadline != "" {
				b.WriteString("  " + deadlineStyle.Render("due "+s.Deadline))
			}
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) Tasks(l TaskList) error {
	var b strings.Builder
	for _, s := range []TaskSection{l.Pending, l.Completed} {
		b.WriteString(headerStyle.Render(s.Title))
		b.WriteString("\n")
		if s.Placeholder != "" {
			b.WriteString("  " + placeholderStyle.Render(s.Placeholder) + "\n")
			continue
		}
		for _, line := range s.Lines {
			fmt.Fprintf(&b, "  [%s] %s  %s", line.idString(), line.Description,
				dimStyle.Render(line.Duration+" · priority: "+line.Priority))
			if line.Deadline != "" {
				b.WriteString("  " + deadlineStyle.Render("due "+line.Deadline))
			}
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}
