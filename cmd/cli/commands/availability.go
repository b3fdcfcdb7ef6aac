package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// AvailabilityCmd creates the availability command and its get/set subcommands
func AvailabilityCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Read or replace a worker's declared availability",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <worker_id>",
		Short: "Show a worker's availability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWorkerID(args[0])
			if err != nil {
				return err
			}

			worker, err := services.GetAvailability(app.Ctx, app.Store, app.Logger, id)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s (%d), %s\n\n", worker.Name, worker.ID, worker.Tier())
			printAvailability(worker.Availability)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <worker_id> <Day:Shift[,Shift]>...",
		Short: "Replace a worker's availability, e.g. Monday:Morning,Evening Friday:Afternoon",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWorkerID(args[0])
			if err != nil {
				return err
			}
			days, err := parseAvailability(args[1:])
			if err != nil {
				return fmt.Errorf("%w: %w", services.ErrInvalidInput, err)
			}

			saved, err := services.SubmitAvailability(app.Ctx, app.Store, app.Logger, id, days)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Availability saved for worker %d\n\n", id)
			printAvailability(saved)
			return nil
		},
	})

	return cmd
}

func parseWorkerID(s string) (model.WorkerID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("worker_id must be a number: %w", err)
	}
	return model.WorkerID(id), nil
}

func printAvailability(days []model.DayAvailability) {
	if len(days) == 0 {
		fmt.Println("No availability declared.")
		return
	}
	for _, d := range days {
		fmt.Printf("  %-10s", d.Day)
		for i, s := range d.Shifts {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Print(s)
		}
		fmt.Println()
	}
}
