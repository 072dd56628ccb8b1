package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agenda-cli/internal/config"
	"agenda-cli/internal/logx"
	"agenda-cli/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local store over the REST contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.Backend != config.BackendLocal {
				return writeErr(cmd, errors.New("serve: only the local backend can be served"))
			}
			if addr == "" {
				addr = app.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			srv := server.New(st, app.log)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Listen(addr) }()
			app.log.Info("serving", logx.String("addr", addr), logx.String("data", app.cfg.SQLitePath()))

			select {
			case err := <-errCh:
				if err != nil {
					return writeErr(cmd, err)
				}
				return nil
			case <-ctx.Done():
			}

			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")
	return cmd
}
