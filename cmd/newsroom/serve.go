package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dfryer1193/newsroom/internal/config"
	"github.com/dfryer1193/newsroom/internal/middleware"
	"github.com/dfryer1193/newsroom/internal/rest"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the article content API",
		Example: `  # Start server on HTTP_PORT (default 8080)
  newsroom serve

  # Start server on a custom port
  newsroom serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = cfg.HTTPPort
			}

			a, err := newApp(cfg, prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			defer a.Close()

			gin.SetMode(gin.ReleaseMode)
			service := gin.New()
			service.Use(middleware.LoggingMiddleware())
			service.Use(gin.CustomRecovery(middleware.HandlePanics()))
			rest.NewApi(service, rest.NewHandler(a.content, a.resolver))

			srv := &http.Server{
				Addr:    ":" + port,
				Handler: service,
			}

			serverErr := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("Starting server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				log.Info().Msg("Shutting down server...")
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to shutdown server")
					return err
				}
				log.Info().Msg("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (defaults to HTTP_PORT)")

	return cmd
}
