package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the weekly schedule for a manager's hotel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			week, _ := cmd.Flags().GetString("week")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			managerID, err := resolveManagerID(cmd, app)
			if err != nil {
				return err
			}

			params := services.GenerateParams{ManagerID: managerID, DryRun: dryRun}
			if week != "" {
				params.WeekStart, err = services.ParseWeekStart(week)
				if err != nil {
					return err
				}
			}

			app.Logger.Debug("generate command",
				zap.Int64("manager_id", int64(managerID)),
				zap.String("week", week),
				zap.Bool("dry_run", dryRun))

			result, err := services.GenerateSchedule(app.Ctx, app.GenerateDeps(), app.Logger, params)
			if err != nil {
				return err
			}

			printGenerateResult(os.Stdout, result, dryRun)
			return nil
		},
	}

	cmd.Flags().Int64("manager-id", 0, "Manager whose hotel is scheduled (defaults to auto.managerID)")
	cmd.Flags().String("week", "", "Week start date (YYYY-MM-DD, a Sunday); defaults to next Sunday")
	cmd.Flags().Bool("dry-run", false, "Solve and print without saving or notifying")

	return cmd
}

// resolveManagerID reads --manager-id, falling back to the configured auto manager
func resolveManagerID(cmd *cobra.Command, app *AppContext) (model.WorkerID, error) {
	if cmd.Flags().Changed("manager-id") {
		id, _ := cmd.Flags().GetInt64("manager-id")
		if id < 0 {
			return 0, fmt.Errorf("%w: manager id must not be negative", services.ErrInvalidInput)
		}
		return model.WorkerID(id), nil
	}
	if app.Cfg.Auto.ManagerID > 0 {
		return model.WorkerID(app.Cfg.Auto.ManagerID), nil
	}
	return 0, errors.New("--manager-id is required (or set auto.managerID)")
}

func printGenerateResult(w io.Writer, result *services.GenerateResult, dryRun bool) {
	outcome := result.Outcome

	switch {
	case dryRun:
		fmt.Fprintf(w, "\n✓ Schedule solved (dry run, nothing saved)\n\n")
	case result.Persisted:
		fmt.Fprintf(w, "\n✓ Schedule generated and saved\n\n")
	default:
		fmt.Fprintf(w, "\n⚠️  Schedule generated but NOT saved: %v\n\n", result.PersistErr)
	}

	fmt.Fprintf(w, "Hotel:      %s\n", result.Result.HotelName)
	fmt.Fprintf(w, "Week start: %s\n", result.Result.RelevantWeekStartDate)
	fmt.Fprintf(w, "Status:     %s (%d of %d slots unfilled)\n", result.Result.Status, outcome.Unfilled(), len(outcome.Assignments))
	fmt.Fprintf(w, "Solver:     %s, objective %d in %s\n\n", outcome.SolverStatus, outcome.Objective, outcome.Elapsed.Round(time.Millisecond))

	if len(result.HookErrs) > 0 {
		names := make([]string, 0, len(result.HookErrs))
		for name := range result.HookErrs {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "⚠️  %d notification(s) failed:\n", len(names))
		for _, name := range names {
			fmt.Fprintf(w, "  ✗ %s: %v\n", name, result.HookErrs[name])
		}
		fmt.Fprintln(w)
	}

	renderSchedule(w, result.Result)
	fmt.Fprintln(w)
}
