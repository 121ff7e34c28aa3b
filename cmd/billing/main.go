package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ptuchik/billing/internal/interfaces/cli/migrate"
	"github.com/ptuchik/billing/internal/interfaces/cli/server"
	"github.com/ptuchik/billing/internal/interfaces/cli/sweep"
)

// @title Billing API
// @version 1.0
// @description Plan purchases, subscriptions and payments.
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	rootCmd := &cobra.Command{
		Use:   "billing",
		Short: "Billing - subscription and payment engine",
		Long:  `Billing sells plans to hosts, renews and expires subscriptions and records every payment.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		sweep.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
