package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/investsync/internal/di"
	"github.com/aristath/investsync/internal/scheduler"
	"github.com/aristath/investsync/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled syncs and the status API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if port == 0 {
				port = a.cfg.Port
			}

			c, err := a.container(ctx)
			if err != nil {
				return err
			}
			defer a.closeContainer(c)

			sched := scheduler.New(a.log)
			if err := di.RegisterJobs(c, sched, a.cfg, a.log); err != nil {
				return err
			}

			srv := server.New(server.Config{
				Log:       a.log,
				Port:      port,
				Engine:    c.Engine,
				Runs:      c.Journal,
				Databases: c.Databases(),
				Jobs:      sched,
			})

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()
			sched.Start()
			a.log.Info().Int("port", port).Msg("investsync is running")

			select {
			case <-ctx.Done():
				a.log.Info().Msg("Shutting down")
			case err = <-errCh:
				a.log.Error().Err(err).Msg("HTTP server failed")
			}

			sched.Stop()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				a.log.Error().Err(serr).Msg("Server forced to shutdown")
			}
			return err
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (defaults to HTTP_PORT)")
	return cmd
}
