package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// ViewStore is what ViewSchedule reads
type ViewStore interface {
	db.ManagerStore
	db.ResultStore
}

// ViewParams selects a result. Hotel wins over ManagerID; an empty WeekStart
// means the most recently generated result.
type ViewParams struct {
	Hotel     string
	ManagerID model.WorkerID
	WeekStart string
}

// ViewSchedule fetches a persisted result document
func ViewSchedule(ctx context.Context, store ViewStore, logger *zap.Logger, params ViewParams) (*model.ResultDocument, error) {
	hotel := params.Hotel
	if hotel == "" {
		if params.ManagerID <= 0 {
			return nil, fmt.Errorf("%w: a hotel or a manager id is required", ErrInvalidInput)
		}
		manager, err := store.GetManager(ctx, params.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch manager %d: %w", params.ManagerID, err)
		}
		hotel = manager.Workplace
	}

	if params.WeekStart == "" {
		logger.Debug("Fetching latest schedule", zap.String("hotel", hotel))
		doc, err := store.GetLatestResult(ctx, hotel)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch latest schedule: %w", err)
		}
		return doc, nil
	}

	if _, err := ParseWeekStart(params.WeekStart); err != nil {
		return nil, err
	}
	logger.Debug("Fetching schedule", zap.String("hotel", hotel), zap.String("week_start", params.WeekStart))
	doc, err := store.GetResult(ctx, hotel, params.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	return doc, nil
}
