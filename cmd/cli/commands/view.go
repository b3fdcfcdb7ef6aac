package commands

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// ViewCmd creates the view command
func ViewCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [hotel]",
		Short: "Show a saved schedule (defaults to the latest one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, _ := cmd.Flags().GetString("week")
			managerID, _ := cmd.Flags().GetInt64("manager-id")

			params := services.ViewParams{ManagerID: model.WorkerID(managerID), WeekStart: week}
			if len(args) > 0 {
				params.Hotel = args[0]
			}

			app.Logger.Debug("view command", zap.String("hotel", params.Hotel), zap.String("week", week))

			doc, err := services.ViewSchedule(app.Ctx, app.Store, app.Logger, params)
			if err != nil {
				return err
			}

			renderSchedule(os.Stdout, doc)
			return nil
		},
	}

	cmd.Flags().String("week", "", "Week start date (YYYY-MM-DD); defaults to the latest schedule")
	cmd.Flags().Int64("manager-id", 0, "Resolve the hotel through this manager")

	return cmd
}
