package cli

import (
	"errors"

	"agenda-cli/internal/config"
	"agenda-cli/internal/model"

	"github.com/spf13/cobra"
)

func newDaysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "days",
		Short: "List the activity days of the current event",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, closeFn, err := openBackend(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			days, err := b.ListDays(cmd.Context(), app.cfg.EventID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if days == nil {
				days = []model.ActivityDay{}
			}
			details := 0
			for _, d := range days {
				details += len(d.Details)
			}
			return writeOut(cmd, app, map[string]any{
				"data": days,
				"meta": map[string]any{"event": app.cfg.EventID, "days": len(days), "details": details},
			})
		},
	}
}

func newEventsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List events known to the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.Backend != config.BackendLocal {
				return writeErr(cmd, errors.New("events: only available with the local backend"))
			}
			st, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			evs, err := st.ListEvents(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if evs == nil {
				evs = []model.Event{}
			}
			return writeOut(cmd, app, map[string]any{"data": evs})
		},
	}
}
