package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"Gin_postgres_redis_device_inventory/app"
	"Gin_postgres_redis_device_inventory/db"
	"Gin_postgres_redis_device_inventory/routes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		a, err := app.New(cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if _, err := app.BootstrapFirstAdmin(ctx, cfg, db.NewRepo(a.DB), log); err != nil {
			log.Warn("bootstrap skipped", zap.Error(err))
		}
		routes.RegisterRoutes(a.Router, a)

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           a.Router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.Info("listening", zap.String("addr", srv.Addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "3001", "listen port (overrides PORT)")
}
