package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"agenda-cli/internal/config"
	"agenda-cli/internal/store"

	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the local store and every stored activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.Backend != config.BackendLocal {
				return writeErr(cmd, errors.New("doctor: only available with the local backend"))
			}
			st, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			report, err := st.Doctor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := writeOut(cmd, app, map[string]any{
				"data": report,
				"meta": map[string]any{
					"issues":    len(report.Issues),
					"hasErrors": report.HasErrors(),
				},
				"_hints": []string{
					"agenda activity show <detail-id>",
					"agenda activity rm <detail-id>",
				},
			}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return store.ErrDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}

func newBackupCmd(app *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a consistent copy of the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.Backend != config.BackendLocal {
				return writeErr(cmd, errors.New("backup: only available with the local backend"))
			}
			if to == "" {
				to = filepath.Join(app.cfg.DataDir, "backups",
					fmt.Sprintf("agenda-%s.sqlite", time.Now().UTC().Format("20060102-150405")))
			}
			st, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			if err := st.Backup(cmd.Context(), to); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"path": to},
				"_hints": []string{"agenda --dir <backup-dir> days"},
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Destination file (default: <data_dir>/backups/agenda-<time>.sqlite)")
	return cmd
}
