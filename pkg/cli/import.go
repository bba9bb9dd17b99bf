package cli

import (
	"fmt"

	"github.com/harrisonrobin/taskplan/pkg/orgmode"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var generate bool
	cmd := &cobra.Command{
		Use:   "import <file.org>",
		Short: "Submit the open TODO headlines of an Org-mode file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := orgmode.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			pending := orgmode.Pending(tasks)

			a, err := startApp(cmd)
			if err != nil {
				return err
			}

			failed := 0
			for _, t := range pending {
				if _, err := a.session.AddTask(cmd.Context(), t); err != nil {
					log.Warn().Str("mod", mod).Str("task", t.Description).Err(err).Msg("import failed")
					failed++
				}
			}
			fmt.Fprintf(a.out, "Imported %d of %d tasks from %s\n", len(pending)-failed, len(pending), args[0])

			if generate && a.session.Store().Len() > 0 {
				if _, err := a.session.GenerateSchedule(cmd.Context()); err != nil {
					return notified(err)
				}
				if err := a.printer.Schedule(a.session.View()); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d tasks could not be imported", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&generate, "generate", false, "Generate a schedule after importing")
	return cmd
}
