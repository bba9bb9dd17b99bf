package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/calendar"
	"github.com/harrisonrobin/taskplan/pkg/config"
	"github.com/harrisonrobin/taskplan/pkg/index"
	"github.com/harrisonrobin/taskplan/pkg/logging"
	"github.com/harrisonrobin/taskplan/pkg/notify"
	"github.com/harrisonrobin/taskplan/pkg/render"
	"github.com/harrisonrobin/taskplan/pkg/session"
	"github.com/harrisonrobin/taskplan/pkg/syncclient"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

const mod = "cli"

// app is everything a task command needs, built once per process.
type app struct {
	cfg     *config.Config
	out     io.Writer
	flash   *notify.Flash
	printer *render.Printer
	session *session.Session
}

// loadConfig reads the config and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if f := cmd.Flag("base-url"); f != nil && f.Changed {
		cfg.BaseURL = f.Value.String()
	}
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		cfg.LogLevel = f.Value.String()
	}
	logging.Setup(cfg.LogLevel, true, cmd.ErrOrStderr())
	return cfg, nil
}

// startApp builds the app and loads the task list from the service.
func startApp(cmd *cobra.Command, opts ...session.Option) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a := newApp(cmd.Context(), cfg, cmd.OutOrStdout(), true, opts...)
	if err := a.session.Start(cmd.Context()); err != nil {
		return nil, notified(err)
	}
	return a, nil
}

// newApp wires the session to the configured service. With echo set every
// notice is printed as it arrives; otherwise the caller polls the flash.
func newApp(ctx context.Context, cfg *config.Config, out io.Writer, echo bool, opts ...session.Option) *app {
	clientOpts := []syncclient.Option{syncclient.WithTimeout(cfg.Timeout)}
	if cfg.APIToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken, TokenType: "Bearer"})
		clientOpts = append(clientOpts, syncclient.WithTokenSource(ctx, ts))
	}
	client := syncclient.New(cfg.BaseURL, clientOpts...)

	flashOpts := []notify.Option{notify.WithTTL(cfg.NoticeTTL)}
	if echo {
		flashOpts = append(flashOpts, notify.WithOutput(out))
	}
	flash := notify.NewFlash(flashOpts...)
	opts = append([]session.Option{session.WithNotifier(flash)}, opts...)

	log.Debug().Str("mod", mod).Str("base_url", cfg.BaseURL).Msg("session configured")
	return &app{
		cfg:     cfg,
		out:     out,
		flash:   flash,
		printer: render.NewPrinter(out),
		session: session.New(client, opts...),
	}
}

// publisher connects to the configured Google Calendar.
func publisher(ctx context.Context, cfg *config.Config) (*calendar.Publisher, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("could not find configuration directory: %w", err)
	}
	client, err := calendar.NewClient(ctx, dir, cfg.Calendar)
	if err != nil {
		return nil, err
	}
	idx, err := index.NewEventIndex(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load event index: %w", err)
	}
	return calendar.NewPublisher(client, idx, time.Local), nil
}
