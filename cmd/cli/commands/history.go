package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// HistoryCmd creates the history command
func HistoryCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <hotel> <count>",
		Short: "View how many shifts each worker was given over recent weeks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hotel := args[0]
			count, err := strconv.Atoi(args[1])
			if err != nil || count < 1 {
				return fmt.Errorf("count must be a positive integer, got: %s", args[1])
			}

			// Default to the week in progress
			lastWeek := services.NextWeekStart(time.Now()).AddDate(0, 0, -7)
			if last, _ := cmd.Flags().GetString("last"); last != "" {
				lastWeek, err = services.ParseWeekStart(last)
				if err != nil {
					return err
				}
			}

			app.Logger.Debug("history command", zap.String("hotel", hotel), zap.Int("count", count))

			result, err := services.ViewHistory(app.Ctx, app.Store, app.Logger, hotel, lastWeek, count)
			if err != nil {
				return err
			}

			fmt.Printf("\nShift history for %s (last %d weeks)\n\n", result.Hotel, len(result.Weeks))

			// Calculate column widths
			maxNameLen := 20
			for _, w := range result.Workers {
				if len(w.Name) > maxNameLen {
					maxNameLen = len(w.Name)
				}
			}
			nameColWidth := maxNameLen + 2
			weekColWidth := 14

			fmt.Printf("%-*s", nameColWidth, "")
			for _, week := range result.Weeks {
				start, _ := time.Parse(model.DateFormat, week)
				fmt.Printf("%-*s", weekColWidth, start.Format("Jan 02"))
			}
			fmt.Printf("%s\n", "Total")

			fmt.Print(strings.Repeat("-", nameColWidth))
			for range result.Weeks {
				fmt.Print(strings.Repeat("-", weekColWidth))
			}
			fmt.Println(strings.Repeat("-", 6))

			average := averageShifts(result)
			for _, w := range result.Workers {
				fmt.Printf("%-*s", nameColWidth, w.Name)
				for _, week := range result.Weeks {
					cell, color := historyCell(result.Matrix[w.ID][week], average)
					fmt.Printf("%s%-*s%s", color, weekColWidth, cell, colorReset)
				}
				fmt.Printf("%d\n", totalShifts(w.ID, result.Weeks, result.Matrix))
			}

			fmt.Printf("%-*s", nameColWidth, "Unfilled slots")
			for _, week := range result.Weeks {
				fmt.Printf("%-*d", weekColWidth, result.Unfilled[week])
			}
			fmt.Println()

			// Legend
			fmt.Println()
			fmt.Println("Legend:")
			fmt.Printf("  %sN (E eve)%s = N shifts, E of them evenings\n", colorGreen, colorReset)
			fmt.Printf("  %sred%s / %syellow%s = well above / below the average of %.1f\n", colorRed, colorReset, colorYellow, colorReset, average)
			fmt.Printf("  %soff%s         = on the schedule's week but not placed\n", colorDim, colorReset)
			fmt.Printf("  %s-%s           = no schedule saved for the week\n", colorDim, colorReset)
			fmt.Printf("  %sError%s       = schedule could not be read\n", colorYellow, colorReset)

			return nil
		},
	}

	cmd.Flags().String("last", "", "Last week start to include (YYYY-MM-DD, a Sunday)")

	return cmd
}
