package cli

import (
	"fmt"

	"github.com/harrisonrobin/taskplan/pkg/auth"
	"github.com/harrisonrobin/taskplan/pkg/calendar"
	"github.com/harrisonrobin/taskplan/pkg/config"
	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Long: `Discard any saved token and run the browser OAuth flow again. Needs
credentials.json from the Google Cloud console in the configuration directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir, err := config.Dir()
			if err != nil {
				return fmt.Errorf("could not find path to configuration file: %w", err)
			}
			if err := auth.Reset(dir); err != nil {
				return err
			}
			if _, err := calendar.NewClient(cmd.Context(), dir, cfg.Calendar); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Publishing to calendar %q\n", cfg.Calendar)
			return nil
		},
	}
}
