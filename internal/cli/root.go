package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/api"
	"agenda-cli/internal/config"
	"agenda-cli/internal/format"
	"agenda-cli/internal/logx"
	"agenda-cli/internal/model"
	"agenda-cli/internal/store"
	"agenda-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	Backend    string
	Dir        string
	EventID    string
	PrettyJSON bool
	Format     string

	cfg       config.Config
	log       logx.Logger
	logCloser io.Closer
}

// backend is what every command needs from either collaborator.
type backend interface {
	tui.Backend
	GetDetail(ctx context.Context, detailID string) (model.ActivityDetail, error)
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "agenda",
		Short:        "Conference program console (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  agenda

  # Scriptable commands
  agenda days --event congreso-2025
  agenda activity add --date 2025-03-10 --type 3 --titulo "Café" --hora-ini 10:00 --hora-fin 10:30

  # Direct detail lookup (shortcut for: agenda activity show <detail-id>)
  agenda det-0b6c…
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive console.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// The console owns the terminal; it only logs when a file is configured.
		return app.setup(cmd == cmd.Root())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logCloser != nil {
			return app.logCloser.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("AGENDA_CONFIG", ""), "Config file (default: ~/.agenda/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Backend (local|rest); overrides config")
	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Data dir of the local store; overrides config")
	cmd.PersistentFlags().StringVar(&app.EventID, "event", "", "Event id; overrides config")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("AGENDA_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newDaysCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newActivityCmd(app))
	cmd.AddCommand(newDurationCmd(app))
	cmd.AddCommand(newProgramCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newBackupCmd(app))

	return cmd
}

// setup loads the config, overlays the persistent flags and builds the logger.
func (app *App) setup(quiet bool) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(app.Backend); v != "" {
		cfg.Backend = v
	}
	if v := strings.TrimSpace(app.Dir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(app.EventID); v != "" {
		cfg.EventID = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	app.cfg = cfg

	log, closer, err := logx.New(logx.Config{Level: cfg.Log.Level, File: cfg.Log.File, Quiet: quiet})
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	app.log, app.logCloser = log, closer
	return nil
}

func (app *App) language() activity.Language {
	if l, ok := activity.ParseLanguage(app.cfg.Language); ok {
		return l
	}
	return activity.Spanish
}

// openBackend returns the configured collaborator and its release func.
func openBackend(ctx context.Context, app *App) (backend, func() error, error) {
	switch app.cfg.Backend {
	case config.BackendREST:
		timeout, err := app.cfg.APITimeout()
		if err != nil {
			return nil, nil, err
		}
		c, err := api.New(app.cfg.API.BaseURL, app.cfg.API.Token, timeout, app.log)
		if err != nil {
			return nil, nil, err
		}
		return c, func() error { return nil }, nil
	default:
		st, err := openStore(ctx, app)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
}

func openStore(ctx context.Context, app *App) (*store.Store, error) {
	return store.Open(ctx, app.cfg.SQLitePath(), app.log)
}

func runTUI(cmd *cobra.Command, app *App) error {
	b, closeFn, err := openBackend(cmd.Context(), app)
	if err != nil {
		return err
	}
	defer closeFn()
	return tui.Run(cmd.Context(), tui.Options{
		Backend:  b,
		EventID:  app.cfg.EventID,
		Language: app.language(),
		Logger:   app.log,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

// asNotFound maps either backend's missing-record error to one message.
func asNotFound(kind, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) || api.IsNotFound(err) {
		return errNotFound(kind, id)
	}
	return err
}
