// Package cli holds the taskplan command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds a fresh command tree. Every call returns independent
// flag state, which the shell relies on.
func NewRootCmd(version string) *cobra.Command {
	var baseURL, logLevel string
	rootCmd := &cobra.Command{
		Use:   "taskplan",
		Short: "taskplan - plan your week around a scheduling service",
		Long: `taskplan keeps a task list in sync with a scheduling service and renders
the weekly schedule it generates.

Every change is sent to the service first; the local list only changes once
the service accepted it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Scheduling service base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(taskCommands()...)
	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	return run(NewRootCmd(version), os.Args[1:], os.Stderr)
}

func run(cmd *cobra.Command, args []string, stderr io.Writer) error {
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var n *notifiedError
		if !errors.As(err, &n) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// notifiedError marks a failure the user already saw as a notice.
type notifiedError struct {
	err error
}

func (e *notifiedError) Error() string { return e.err.Error() }

func (e *notifiedError) Unwrap() error { return e.err }

func notified(err error) error {
	if err == nil {
		return nil
	}
	return &notifiedError{err: err}
}
