package cli

import (
	"fmt"

	"agenda-cli/internal/program"

	"github.com/spf13/cobra"
)

func newProgramCmd(app *App) *cobra.Command {
	var (
		raw   bool
		width int
		title string
	)

	cmd := &cobra.Command{
		Use:   "program",
		Short: "Print the event program day by day",
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
			if title == "" {
				title = app.cfg.EventID
			}
			md := program.Markdown(title, days, app.language())
			if !raw {
				md = program.Render(md, width, program.Style())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), md)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal rendering")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	cmd.Flags().StringVar(&title, "title", "", "Program title (default: event id)")
	return cmd
}
