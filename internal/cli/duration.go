package cli

import (
	"agenda-cli/internal/activity"

	"github.com/spf13/cobra"
)

func newDurationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duration <fecha-ini> <fecha-fin>",
		Short: "Compute the length of a field trip in days",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := activity.TripDuration(args[0], args[1])
			status := "ok"
			switch d.Status {
			case activity.DurationInvalidDates:
				status = "invalid_dates"
			case activity.DurationEndBeforeStart:
				status = "end_before_start"
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"fechaIni": args[0],
				"fechaFin": args[1],
				"days":     d.Days,
				"status":   status,
				"text":     d.String(),
			}})
		},
	}
}
