package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// NormalizeAvailability merges repeated days, drops duplicate shifts and
// empty days, and orders the result by week day and shift. Unknown days or
// shifts are rejected.
func NormalizeAvailability(days []model.DayAvailability) ([]model.DayAvailability, error) {
	shifts := make(map[model.Day]map[model.ShiftPeriod]bool)
	for _, d := range days {
		if !d.Day.IsValid() {
			return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidInput, d.Day)
		}
		for _, s := range d.Shifts {
			if !s.IsValid() {
				return nil, fmt.Errorf("%w: unknown shift %q on %s", ErrInvalidInput, s, d.Day)
			}
			if shifts[d.Day] == nil {
				shifts[d.Day] = make(map[model.ShiftPeriod]bool)
			}
			shifts[d.Day][s] = true
		}
	}

	out := []model.DayAvailability{}
	for _, day := range model.Days {
		if len(shifts[day]) == 0 {
			continue
		}
		entry := model.DayAvailability{Day: day}
		for s := range shifts[day] {
			entry.Shifts = append(entry.Shifts, s)
		}
		sort.Slice(entry.Shifts, func(i, j int) bool { return entry.Shifts[i].Index() < entry.Shifts[j].Index() })
		out = append(out, entry)
	}
	return out, nil
}

// SubmitAvailability replaces a worker's declared availability for the coming weeks
func SubmitAvailability(ctx context.Context, store db.WorkerStore, logger *zap.Logger, id model.WorkerID, days []model.DayAvailability) ([]model.DayAvailability, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: worker id %d is reserved", ErrInvalidInput, id)
	}
	normalized, err := NormalizeAvailability(days)
	if err != nil {
		return nil, err
	}

	if err := store.SetAvailability(ctx, id, normalized); err != nil {
		return nil, fmt.Errorf("failed to save availability: %w", err)
	}
	logger.Info("Availability saved", zap.Int64("worker_id", int64(id)), zap.Int("days", len(normalized)))
	return normalized, nil
}

// GetAvailability returns a worker's declared availability
func GetAvailability(ctx context.Context, store db.WorkerStore, logger *zap.Logger, id model.WorkerID) (*model.Worker, error) {
	logger.Debug("Fetching availability", zap.Int64("worker_id", int64(id)))
	w, err := store.GetWorker(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch worker: %w", err)
	}
	return w, nil
}
