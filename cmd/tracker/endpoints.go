// File: cmd/tracker/endpoints.go
package main

import (
	"fmt"
	"io"

	"yad2_tracker/internal/endpoint"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newEndpointsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "Manage the polled source endpoints",
	}
	cmd.AddCommand(
		newEndpointsListCommand(),
		newEndpointsAddCommand(),
		newEndpointsToggleCommand("enable", "Resume polling an endpoint", true),
		newEndpointsToggleCommand("disable", "Stop polling an endpoint without removing it", false),
		newEndpointsRemoveCommand(),
	)
	return cmd
}

func newEndpointsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			eps, err := application.Store.ListEndpoints(cmd.Context())
			if err != nil {
				return err
			}
			renderEndpoints(cmd.OutOrStdout(), eps)
			return nil
		},
	}
}

func newEndpointsAddCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			var displayName *string
			if name != "" {
				displayName = &name
			}
			e, err := application.Store.AddEndpoint(cmd.Context(), args[0], displayName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added endpoint %d: %s\n", e.ID, e.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func newEndpointsToggleCommand(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <url>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			e, err := application.Store.SetEndpointActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Endpoint %s is now %s\n", e.Label(), activeLabel(e.IsActive))
			return nil
		},
	}
}

func newEndpointsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <url>",
		Short: "Remove an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := application.Store.DeleteEndpoint(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed endpoint %s\n", args[0])
			return nil
		},
	}
}

func renderEndpoints(w io.Writer, eps []endpoint.Endpoint) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Status", "URL"})
	for i := range eps {
		e := &eps[i]
		t.AppendRow(table.Row{e.ID, e.Label(), activeLabel(e.IsActive), e.URL})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d endpoints", len(eps))})
	t.Render()
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "disabled"
}
