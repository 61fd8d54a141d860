// File: cmd/tracker/reindex.go
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newReindexCommand() *cobra.Command {
	var (
		batchSize int
		refresh   string
	)
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the Elasticsearch mirror from the seen set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if application.Indexer == nil {
				return errors.New("search mirror is not available, check ELASTICSEARCH_URL")
			}
			res, err := application.Indexer.Sync(cmd.Context(), application.Store.Listings(), batchSize, refresh)
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d listings, %d failed\n", res.Synced, res.Failed)
			return err
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "listings per bulk request")
	cmd.Flags().StringVar(&refresh, "es-refresh", "false", "bulk refresh policy (true, false, wait_for)")
	return cmd
}
