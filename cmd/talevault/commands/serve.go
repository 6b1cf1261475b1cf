package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/talevault/talevault/pkg/telemetry"
)

func newServeCommand(version string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve store health and metrics over HTTP",
		Long: `Run an HTTP server exposing the variable store's operational
surface:

  /healthz  store connectivity check
  /metrics  Prometheus metrics

The server runs until interrupted.`,
		Example: `  # Default listen address from config
  talevault serve

  # Explicit address
  talevault serve --listen :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Telemetry.MetricsListen = listen
			}

			tel, err := telemetry.NewTelemetry(cfg.TelemetrySettings(version))
			if err != nil {
				return err
			}
			defer tel.Shutdown(context.Background())

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			mux := http.NewServeMux()
			mux.Handle(tel.Config.Metrics.Path, tel.Metrics.Handler())
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				op := telemetry.StartOperation(tel.WithContext(r.Context()), "store.healthcheck")
				err := store.HealthCheck(op.Ctx)
				op.End(err)
				if err != nil {
					op.Logger.WithError(err).Error("Health check failed")
					http.Error(w, "unhealthy", http.StatusServiceUnavailable)
					return
				}
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})

			srv := &http.Server{
				Addr:              tel.Config.Metrics.ListenAddress,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("listen", srv.Addr).Msg("Serving health and metrics")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				log.Info().Msg("Server stopped")
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")

	return cmd
}
