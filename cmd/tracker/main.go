// File: cmd/tracker/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"yad2_tracker/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "tracker",
		Short:        "Yad2 rental ads tracker",
		Long:         `Polls Yad2 map endpoints, emails new private listings and keeps a durable seen set.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newRunCommand(),
		newServeCommand(),
		newCleanupCommand(),
		newEndpointsCommand(),
		newEmailTestCommand(),
		newReindexCommand(),
	)
	return root
}

// bootstrap loads configuration and builds the application graph.
func bootstrap(ctx context.Context) (*Application, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	application, cleanup, err := initializeApplication(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize application: %w", err)
	}
	return application, cleanup, nil
}
