package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devotional/internal/httpapi"
	"github.com/mesh-intelligence/devotional/internal/sqlite"
	"github.com/mesh-intelligence/devotional/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(st *state) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := telemetry.Setup(ctx, st.cfg.Secrets.OTelEndpoint, Version)
			if err != nil {
				return sysError(fmt.Errorf("setup tracing: %w", err))
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := shutdownTracing(sctx); err != nil {
					a.logger.Warn("tracing shutdown", "error", err)
				}
			}()

			svc, err := st.service(a)
			if err != nil {
				return err
			}
			fallback, err := sqlite.FallbackVerses()
			if err != nil {
				return sysError(err)
			}

			api := httpapi.New(httpapi.Deps{
				Devotionals:   svc,
				Stats:         a.cache,
				Verses:        a.resolver,
				Importer:      a.importer,
				Schedule:      a.store,
				Logger:        a.logger,
				ImportSecret:  st.cfg.Secrets.ImportSecret,
				ScheduleURL:   st.cfg.Schedule.CSVURL,
				FallbackCount: len(fallback),
			})

			if addr == "" {
				addr = st.cfg.ListenAddr
			}
			srv := httpapi.NewHTTPServer(addr, api.Handler())

			serverErrors := make(chan error, 1)
			go func() {
				a.logger.Info("starting devotional server", "addr", addr, "data_dir", a.store.DataDir())
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return sysError(fmt.Errorf("server: %w", err))
				}
				return nil
			case <-ctx.Done():
				a.logger.Info("shutdown signal received")
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(sctx); err != nil {
					a.logger.Error("server shutdown", "error", err)
				}
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: listen_addr from config)")
	return cmd
}
