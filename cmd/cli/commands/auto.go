package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// AutoCmd creates the auto command
func AutoCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Generate the next week's schedule on the configured recurrence",
		Long: `Runs until interrupted, generating the schedule for the configured manager
every time the auto.rrule recurrence fires. Failed runs are logged and the
loop waits for the next occurrence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runNow, _ := cmd.Flags().GetBool("run-now")

			if app.Cfg.Auto.ManagerID <= 0 {
				return errors.New("auto.managerID must be configured")
			}
			managerID := model.WorkerID(app.Cfg.Auto.ManagerID)

			run := func(ctx context.Context) error {
				result, err := services.GenerateSchedule(ctx, app.GenerateDeps(), app.Logger, services.GenerateParams{ManagerID: managerID})
				if err != nil {
					return err
				}
				app.Logger.Info("Scheduled run finished",
					zap.String("hotel", result.Result.HotelName),
					zap.String("week_start", result.Result.RelevantWeekStartDate),
					zap.String("status", string(result.Result.Status)),
					zap.Bool("persisted", result.Persisted))
				return nil
			}

			app.Logger.Info("Starting scheduled runs", zap.String("rrule", app.Cfg.Auto.RRule), zap.Int64("manager_id", int64(managerID)))
			return runAutoLoop(app.Ctx, app.Logger, app.Cfg.Auto.NextRun, time.Now, run, runNow)
		},
	}

	cmd.Flags().Bool("run-now", false, "Run once immediately before waiting for the first occurrence")

	return cmd
}

// runAutoLoop calls run at every occurrence returned by nextRun until ctx is
// cancelled. Run failures are logged, not returned.
func runAutoLoop(
	ctx context.Context,
	logger *zap.Logger,
	nextRun func(time.Time) (time.Time, error),
	now func() time.Time,
	run func(context.Context) error,
	runNow bool,
) error {
	if runNow {
		if err := run(ctx); err != nil {
			logger.Error("Scheduled run failed", zap.Error(err))
		}
	}

	for {
		next, err := nextRun(now())
		if err != nil {
			return fmt.Errorf("failed to compute next run: %w", err)
		}
		logger.Info("Waiting for next run", zap.Time("next_run", next))

		timer := time.NewTimer(next.Sub(now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("Stopping scheduled runs")
			return nil
		case <-timer.C:
		}

		if err := run(ctx); err != nil {
			logger.Error("Scheduled run failed", zap.Error(err))
		}
	}
}
