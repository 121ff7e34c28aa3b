// Package sweep runs the subscription lifecycle sweeps once from the command
// line, for cron setups that do not use the built-in scheduler.
package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptuchik/billing/internal/infrastructure/database"
	"github.com/ptuchik/billing/internal/infrastructure/scheduler"
	"github.com/ptuchik/billing/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/ptuchik/billing/internal/interfaces/http"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/constants"
)

var (
	env  string
	date string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a subscription lifecycle sweep",
		Long:  `Renew, expire or remind every subscription due on a business date.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&date, "date", "d", "", "Business date YYYY-MM-DD (default today)")

	cmd.AddCommand(
		newSweepCommand("renew", "Charge subscriptions due for renewal", func(j scheduler.BillingJobs) scheduler.SweepJob { return j.Renew }),
		newSweepCommand("expire", "Expire subscriptions that ended", func(j scheduler.BillingJobs) scheduler.SweepJob { return j.Expire }),
		newSweepCommand("remind", "Send expiration reminders", func(j scheduler.BillingJobs) scheduler.SweepJob { return j.Remind }),
	)

	return cmd
}

func newSweepCommand(use, short string, pick func(scheduler.BillingJobs) scheduler.SweepJob) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, use, pick)
		},
	}
}

func run(cmd *cobra.Command, kind string, pick func(scheduler.BillingJobs) scheduler.SweepJob) error {
	e, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer e.Close()

	day, err := parseDate(date, biztime.NowUTC)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	container, err := httpRouter.NewContainer(ctx, database.Get(), e.Config, e.Logger)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer container.Shutdown()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	e.Logger.Infow("running sweep", "kind", kind, "date", biztime.FormatInBizTimezone(day, biztime.DateLayout))

	result, err := pick(container.SweepJobs()).Execute(ctx, day)
	if err != nil {
		return fmt.Errorf("%s sweep failed: %w", kind, err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// parseDate reads a business date, defaulting to today.
func parseDate(value string, now func() time.Time) (time.Time, error) {
	if value == "" {
		return now(), nil
	}
	t, err := biztime.ParseDateInBizTimezone(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}
