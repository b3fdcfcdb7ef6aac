package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// GetHotel retrieves a hotel and its requirement table. A hotel row without a
// table comes back with nil Requirements.
func (d *DB) GetHotel(ctx context.Context, name string) (*model.Hotel, error) {
	var raw []byte
	err := d.pool.QueryRow(ctx, `
		SELECT requirements
		FROM hotels
		WHERE name = $1
	`, name).Scan(&raw)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("hotel %q", name))
	}

	hotel := &model.Hotel{Name: name}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &hotel.Requirements); err != nil {
			return nil, fmt.Errorf("failed to decode requirements of %q: %w", name, err)
		}
	}
	return hotel, nil
}

// SaveRequirements creates or replaces a hotel's requirement table
func (d *DB) SaveRequirements(ctx context.Context, hotel string, table model.RequirementTable) error {
	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode requirements: %w", err)
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO hotels (name, requirements)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET requirements = EXCLUDED.requirements
	`, hotel, payload)
	if err != nil {
		return fmt.Errorf("failed to save requirements: %w", err)
	}
	return nil
}
