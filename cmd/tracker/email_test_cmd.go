// File: cmd/tracker/email_test_cmd.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEmailTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "email-test",
		Short: "Check that the SMTP server accepts the configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := application.Notifier.VerifyTransport(cmd.Context()); err != nil {
				return fmt.Errorf("email configuration test failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Email configuration is valid")
			return nil
		},
	}
}
