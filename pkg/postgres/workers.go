package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

const workerColumns = `id, name, is_shift_manager, is_weapon_certified, workplace, selected_days`

func scanWorker(row pgx.Row) (model.Worker, error) {
	var w model.Worker
	var days []byte
	if err := row.Scan(&w.ID, &w.Name, &w.IsShiftManager, &w.IsWeaponCertified, &w.Workplace, &days); err != nil {
		return model.Worker{}, err
	}
	if len(days) > 0 {
		if err := json.Unmarshal(days, &w.Availability); err != nil {
			return model.Worker{}, fmt.Errorf("failed to decode availability of worker %d: %w", w.ID, err)
		}
	}
	return w, nil
}

// GetManager retrieves a shift manager by id
func (d *DB) GetManager(ctx context.Context, id model.WorkerID) (*model.Manager, error) {
	var m model.Manager
	err := d.pool.QueryRow(ctx, `
		SELECT id, name, workplace, email
		FROM workers
		WHERE id = $1 AND is_shift_manager
	`, id).Scan(&m.ID, &m.Name, &m.Workplace, &m.Email)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("manager %d", id))
	}
	return &m, nil
}

// GetWorkers retrieves every worker of a workplace ordered by id
func (d *DB) GetWorkers(ctx context.Context, workplace string) ([]model.Worker, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+workerColumns+`
		FROM workers
		WHERE workplace = $1
		ORDER BY id
	`, workplace)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	workers := []model.Worker{}
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workers: %w", err)
	}

	return workers, nil
}

// GetWorker retrieves a single worker
func (d *DB) GetWorker(ctx context.Context, id model.WorkerID) (*model.Worker, error) {
	w, err := scanWorker(d.pool.QueryRow(ctx, `
		SELECT `+workerColumns+`
		FROM workers
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("worker %d", id))
	}
	return &w, nil
}

// SetAvailability replaces a worker's declared availability
func (d *DB) SetAvailability(ctx context.Context, id model.WorkerID, days []model.DayAvailability) error {
	if days == nil {
		days = []model.DayAvailability{}
	}
	payload, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("failed to encode availability: %w", err)
	}

	tag, err := d.pool.Exec(ctx, `
		UPDATE workers
		SET selected_days = $1
		WHERE id = $2
	`, payload, id)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("worker %d: %w", id, db.ErrNotFound)
	}
	return nil
}
