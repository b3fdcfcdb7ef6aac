package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/httpapi"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduling HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Cfg.Server

			handler, err := httpapi.NewHandler(app.GenerateDeps(), app.Logger)
			if err != nil {
				return fmt.Errorf("failed to create handler: %w", err)
			}
			handler.RegisterRoutes()

			srv := &http.Server{
				Addr:         cfg.Addr,
				Handler:      handler.Mux,
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			}

			serveErr := make(chan error, 1)
			go func() {
				app.Logger.Info("Listening", zap.String("addr", cfg.Addr))
				serveErr <- srv.ListenAndServe()
			}()

			select {
			case err := <-serveErr:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-app.Ctx.Done():
			}

			app.Logger.Info("Shutting down server")
			ctx, cancel := context.WithTimeout(context.WithoutCancel(app.Ctx), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("failed to shut down server: %w", err)
			}
			return nil
		},
	}
}
