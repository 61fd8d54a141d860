// File: cmd/tracker/serve.go
package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errFatal = errors.New("tracker stopped")

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin API and run the scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			server := application.Server
			log := application.Logger

			startErr := make(chan error, 1)
			go func() {
				startErr <- server.Start()
			}()

			var result error
			select {
			case <-cmd.Context().Done():
				log.Info("Received shutdown signal")
			case err := <-startErr:
				if err != nil {
					return err
				}
				return nil
			case err := <-server.Fatal():
				log.Error("Shutting down after fatal persistence failure", zap.Error(err))
				result = errors.Join(errFatal, err)
			}

			timeout := application.Config.ServerTimeout
			if timeout <= 0 {
				timeout = 30 * time.Second
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("Server forced to shutdown", zap.Error(err))
				return errors.Join(result, err)
			}
			log.Info("Server shutdown complete")
			return result
		},
	}
}
