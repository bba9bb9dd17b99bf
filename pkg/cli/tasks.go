package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/harrisonrobin/taskplan/pkg/session"
	"github.com/spf13/cobra"
)

// appFunc hands a command its app. One-shot commands start a fresh one; the
// shell returns the app it already holds.
type appFunc func(cmd *cobra.Command, opts ...session.Option) (*app, error)

func taskCommands() []*cobra.Command {
	return []*cobra.Command{
		newListCmd(startApp),
		newAddCmd(startApp),
		newActionCmd(startApp, session.ActionDelete, "Delete a task and regenerate the schedule"),
		newActionCmd(startApp, session.ActionComplete, "Mark a task done and regenerate the schedule"),
		newGenerateCmd(startApp, true),
	}
}

func newListCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending and completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := get(cmd)
			if err != nil {
				return err
			}
			return a.printer.Tasks(a.session.TaskList())
		},
	}
}

func newAddCmd(get appFunc) *cobra.Command {
	var (
		duration float64
		priority string
		deadline string
	)
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Add a task",
		Long: `Add a task. The description is every argument joined by spaces.

Adding a task does not regenerate the schedule; run generate afterwards.`,
		Example: `  taskplan add Write the quarterly report --duration 2.5 --priority high --deadline 2024-01-05`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := model.ParsePriority(priority)
			if err != nil {
				return err
			}
			d, err := model.ParseDeadline(deadline)
			if err != nil {
				return err
			}
			a, err := get(cmd)
			if err != nil {
				return err
			}
			task, err := a.session.AddTask(cmd.Context(), model.Task{
				Description: strings.TrimSpace(strings.Join(args, " ")),
				Duration:    duration,
				Priority:    p,
				Deadline:    d,
			})
			if err != nil {
				return notified(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d\n", task.ID)
			return nil
		},
	}
	cmd.Flags().Float64VarP(&duration, "duration", "d", 1, "Estimated hours")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(model.PriorityMedium), "low, medium or high")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline as YYYY-MM-DD or YYYY-MM-DDTHH:MM")
	return cmd
}

// newActionCmd runs an action through the session's action table, so a
// completed task refuses complete the same way the views would.
func newActionCmd(get appFunc, action session.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			a, err := get(cmd)
			if err != nil {
				return err
			}
			if err := a.session.Dispatch(cmd.Context(), id, action); err != nil {
				if errors.Is(err, session.ErrNoAction) {
					return fmt.Errorf("task %d cannot be %sd", id, action)
				}
				return notified(err)
			}
			if a.session.Schedule() != nil {
				return a.printer.Schedule(a.session.View())
			}
			return nil
		},
	}
}

func newGenerateCmd(get appFunc, allowPublish bool) *cobra.Command {
	var publish bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask the service for a fresh schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []session.Option
			if publish {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				p, err := publisher(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				opts = append(opts, session.WithPublisher(p))
			}
			a, err := get(cmd, opts...)
			if err != nil {
				return err
			}
			if _, err := a.session.GenerateSchedule(cmd.Context()); err != nil {
				return notified(err)
			}
			return a.printer.Schedule(a.session.View())
		},
	}
	if allowPublish {
		cmd.Flags().BoolVar(&publish, "publish", false, "Mirror the schedule into the configured Google Calendar")
	}
	return cmd
}
