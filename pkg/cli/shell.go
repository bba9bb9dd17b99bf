package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/harrisonrobin/taskplan/pkg/notify"
	"github.com/harrisonrobin/taskplan/pkg/session"
	"github.com/spf13/cobra"
)

const shellPrompt = "taskplan> "

var promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

func newShellCmd() *cobra.Command {
	var publish bool
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive session against one task list",
		Long: `Start an interactive session. The task list is loaded once and kept in
memory; every line is one of list, add, delete, complete, generate or
schedule, with the same flags as the one-shot commands. Type exit to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			var opts []session.Option
			if publish {
				p, err := publisher(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				opts = append(opts, session.WithPublisher(p))
			}

			a := newApp(cmd.Context(), cfg, cmd.OutOrStdout(), false, opts...)
			defer a.session.Close()
			// A failed load still leaves a usable, empty session.
			a.session.Start(cmd.Context())

			return runShell(cmd, a)
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "Mirror every generated schedule into the configured Google Calendar")
	return cmd
}

func runShell(cmd *cobra.Command, a *app) error {
	get := func(*cobra.Command, ...session.Option) (*app, error) { return a, nil }
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		fmt.Fprint(a.out, prompt(a.flash))
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return nil
		}

		line := &cobra.Command{
			Use:           "taskplan>",
			SilenceUsage:  true,
			SilenceErrors: true,
		}
		line.AddCommand(
			newListCmd(get),
			newAddCmd(get),
			newActionCmd(get, session.ActionDelete, "Delete a task and regenerate the schedule"),
			newActionCmd(get, session.ActionComplete, "Mark a task done and regenerate the schedule"),
			newGenerateCmd(get, false),
			newScheduleCmd(get),
		)
		line.SetOut(a.out)
		line.SetErr(a.out)
		line.SetContext(cmd.Context())
		run(line, fields, a.out)
	}
}

// newScheduleCmd reprints the last generated schedule.
func newScheduleCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show the current schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := get(cmd)
			if err != nil {
				return err
			}
			return a.printer.Schedule(a.session.View())
		},
	}
}

// prompt carries the latest notice until it expires.
func prompt(f *notify.Flash) string {
	p := promptStyle.Render(shellPrompt)
	if n, ok := f.Current(); ok {
		return notify.Format(n) + "\n" + p
	}
	return p
}
