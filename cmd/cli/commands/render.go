package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// renderSchedule prints a result day by day. Days without any slot are skipped.
func renderSchedule(w io.Writer, doc *model.ResultDocument) {
	fmt.Fprintf(w, "Schedule for %s, week of %s (%s)\n", doc.HotelName, doc.RelevantWeekStartDate, doc.Status)
	fmt.Fprintf(w, "Generated %s, run %s\n", doc.GeneratedAt.Format("2006-01-02 15:04"), doc.ID)

	for _, day := range model.Days {
		var b strings.Builder
		for _, shift := range model.ShiftPeriods {
			entries := doc.Schedule[day][shift]
			if len(entries) == 0 {
				continue
			}
			fmt.Fprintf(&b, "  -- %s --\n", shift)
			for _, entry := range entries {
				fmt.Fprintf(&b, "    %-20s: %s\n", entry.Position, doc.EntryLabel(entry))
			}
		}
		if b.Len() > 0 {
			fmt.Fprintf(w, "\n=== %s ===\n%s", strings.ToUpper(string(day)), b.String())
		}
	}

	if len(doc.Notes) > 0 {
		fmt.Fprintf(w, "\nUnfilled slots (%d):\n", len(doc.Notes))
		for _, note := range doc.Notes {
			weapon := ""
			if note.Weapon {
				weapon = " [weapon]"
			}
			fmt.Fprintf(w, "  ✗ %s, %s%s\n", note.Shift, note.Position, weapon)
		}
	}
}

// historyCell returns the text and color of one worker-week cell
func historyCell(status services.WorkerWeekStatus, average float64) (string, string) {
	switch status.Status {
	case services.HistoryWorked:
		cell := fmt.Sprintf("%d (%d eve)", status.Shifts, status.Evenings)
		return cell, shiftLoadColor(status.Shifts, average)
	case services.HistoryOff:
		return "off", colorDim
	case services.HistoryFetchError:
		return "Error", colorYellow
	default:
		return "-", colorDim
	}
}

// shiftLoadColor flags weeks well above or below the average load
func shiftLoadColor(shifts int, average float64) string {
	switch {
	case average <= 0:
		return ""
	case float64(shifts) > average*1.5:
		return colorRed
	case float64(shifts) < average*0.5:
		return colorYellow
	default:
		return colorGreen
	}
}

// totalShifts sums the shifts a worker was given over the listed weeks
func totalShifts(id model.WorkerID, weeks []string, matrix map[model.WorkerID]map[string]services.WorkerWeekStatus) int {
	total := 0
	for _, week := range weeks {
		if status, ok := matrix[id][week]; ok && status.Status == services.HistoryWorked {
			total += status.Shifts
		}
	}
	return total
}

// averageShifts is the mean shifts per worker-week over weeks that had a schedule
func averageShifts(result *services.ViewHistoryResult) float64 {
	sum, n := 0, 0
	for _, w := range result.Workers {
		for _, week := range result.Weeks {
			status := result.Matrix[w.ID][week]
			if status.Status == services.HistoryWorked || status.Status == services.HistoryOff {
				sum += status.Shifts
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// parseAvailability reads "Day:Shift,Shift" arguments, e.g. "Monday:Morning,Evening"
func parseAvailability(args []string) ([]model.DayAvailability, error) {
	days := make([]model.DayAvailability, 0, len(args))
	for _, arg := range args {
		dayName, shiftList, ok := strings.Cut(arg, ":")
		if !ok || shiftList == "" {
			return nil, fmt.Errorf("expected Day:Shift[,Shift], got %q", arg)
		}
		day, err := model.ParseDay(dayName)
		if err != nil {
			return nil, err
		}
		entry := model.DayAvailability{Day: day}
		for _, name := range strings.Split(shiftList, ",") {
			shift, err := model.ParseShiftPeriod(strings.TrimSpace(name))
			if err != nil {
				return nil, err
			}
			entry.Shifts = append(entry.Shifts, shift)
		}
		days = append(days, entry)
	}
	return days, nil
}
