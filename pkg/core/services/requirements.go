package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// SaveRequirements validates and stores a hotel's weekly requirement table
func SaveRequirements(ctx context.Context, store db.HotelStore, logger *zap.Logger, hotel string, table model.RequirementTable) error {
	if hotel == "" {
		return fmt.Errorf("%w: hotel name is required", ErrInvalidInput)
	}
	if table == nil {
		return fmt.Errorf("%w: requirement table is required", ErrInvalidInput)
	}
	if err := table.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := store.SaveRequirements(ctx, hotel, table); err != nil {
		return fmt.Errorf("failed to save requirements: %w", err)
	}
	logger.Info("Requirements saved", zap.String("hotel", hotel), zap.Int("shifts", len(table)))
	return nil
}

// GetRequirements returns a hotel's requirement table. A hotel without one
// yields an empty table.
func GetRequirements(ctx context.Context, store db.HotelStore, logger *zap.Logger, hotel string) (model.RequirementTable, error) {
	logger.Debug("Fetching requirements", zap.String("hotel", hotel))
	h, err := store.GetHotel(ctx, hotel)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hotel: %w", err)
	}
	if h.Requirements == nil {
		return model.RequirementTable{}, nil
	}
	return h.Requirements, nil
}
