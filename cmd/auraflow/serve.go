package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muzammilx07/AuraFlow/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		port := d.cfg.App.Port
		if p, _ := cmd.Flags().GetString("port"); p != "" {
			port = p
		}

		srv := api.NewServer(api.Options{
			Engine:         d.engine,
			ChatDefaults:   d.chatDefaults(),
			CORS: api.CORSConfig{
				Origins:          d.cfg.App.CorsAllowedOrigins,
				AllowedMethods:   d.cfg.App.CorsAllowedMethods,
				AllowedHeaders:   d.cfg.App.CorsAllowedHeaders,
				AllowCredentials: d.cfg.App.CorsAllowCreds,
				MaxAge:           d.cfg.App.CorsMaxAge,
			},
			MaxUploadBytes: d.cfg.App.MaxUploadBytes,
			Logger:         d.log,
		})
		server := &http.Server{
			Addr:         ":" + port,
			Handler:      srv.Handler(),
			ReadTimeout:  d.cfg.App.ReadTimeout,
			WriteTimeout: d.cfg.App.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			d.log.Info("main", "AuraFlow server starting", map[string]interface{}{"port": port, "env": d.cfg.App.Environment})
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		// Wait for interrupt signal
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			d.log.Error("main", "server failed to start", map[string]interface{}{"error": err})
			return err
		case <-c:
		}

		d.log.Info("main", "shutting down gracefully", nil)
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.App.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			d.log.Error("main", "server forced to shutdown", map[string]interface{}{"error": err})
			return err
		}
		d.log.Info("main", "server exited", nil)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "Port to listen on (overrides PORT)")
}
