// File: cmd/tracker/run.go
package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCommand() *cobra.Command {
	var scheduled bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tracker once, or on TRACKER_SCHEDULE with --schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if !scheduled {
				return application.TrackerJob.RunOnce(cmd.Context())
			}
			return runScheduled(cmd, application)
		},
	}
	cmd.Flags().BoolVarP(&scheduled, "schedule", "s", false, "keep running on TRACKER_SCHEDULE")
	return cmd
}

func runScheduled(cmd *cobra.Command, application *Application) error {
	log := application.Logger
	if err := application.TrackerJob.SetupAndStart(); err != nil {
		return err
	}
	defer application.TrackerJob.Stop()

	if err := application.CleanupJob.SetupAndStart(); err != nil {
		log.Error("Failed to start cleanup job", zap.Error(err))
	}
	defer application.CleanupJob.Stop()

	select {
	case <-cmd.Context().Done():
		log.Info("Received shutdown signal, stopping scheduler")
		return nil
	case err := <-application.TrackerJob.Fatal():
		log.Error("Stopping after fatal persistence failure", zap.Error(err))
		return errors.Join(errFatal, err)
	}
}
