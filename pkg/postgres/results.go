package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

const resultColumns = `id, hotel_name, generated_at, schedule, status, notes, week_marker, relevant_week_start, id_to_name`

func scanResult(row pgx.Row) (*model.ResultDocument, error) {
	var doc model.ResultDocument
	var schedule, notes, names []byte
	var weekStart time.Time
	var status, marker string
	if err := row.Scan(&doc.ID, &doc.HotelName, &doc.GeneratedAt, &schedule, &status, &notes, &marker, &weekStart, &names); err != nil {
		return nil, err
	}
	doc.Status = model.Status(status)
	doc.WeekMarker = model.WeekMarker(marker)
	doc.GeneratedAt = doc.GeneratedAt.UTC()
	doc.RelevantWeekStartDate = weekStart.Format(model.DateFormat)

	if err := json.Unmarshal(schedule, &doc.Schedule); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}
	if err := json.Unmarshal(notes, &doc.Notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	if len(names) > 0 {
		if err := json.Unmarshal(names, &doc.WorkerNames); err != nil {
			return nil, fmt.Errorf("failed to decode worker names: %w", err)
		}
	}
	return &doc, nil
}

func parseWeekStart(s string) (time.Time, error) {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week start %q: %w", s, err)
	}
	return t, nil
}

// GetResult retrieves the result of a hotel for the week starting on weekStart (YYYY-MM-DD)
func (d *DB) GetResult(ctx context.Context, hotel, weekStart string) (*model.ResultDocument, error) {
	week, err := parseWeekStart(weekStart)
	if err != nil {
		return nil, err
	}

	doc, err := scanResult(d.pool.QueryRow(ctx, `
		SELECT id::text, hotel_name, generated_at, schedule, status, notes, week_marker, relevant_week_start, id_to_name
		FROM results
		WHERE hotel_name = $1 AND relevant_week_start = $2
	`, hotel, week))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("result for %q week %s", hotel, weekStart))
	}
	return doc, nil
}

// GetLatestResult retrieves the most recently generated result of a hotel
func (d *DB) GetLatestResult(ctx context.Context, hotel string) (*model.ResultDocument, error) {
	doc, err := scanResult(d.pool.QueryRow(ctx, `
		SELECT id::text, hotel_name, generated_at, schedule, status, notes, week_marker, relevant_week_start, id_to_name
		FROM results
		WHERE hotel_name = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`, hotel))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("latest result for %q", hotel))
	}
	return doc, nil
}

// SaveResult demotes the hotel's current result to previous and upserts doc
// as the new current one, keyed by hotel and week start, in one transaction.
func (d *DB) SaveResult(ctx context.Context, doc *model.ResultDocument) error {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return fmt.Errorf("invalid result id %q: %w", doc.ID, err)
	}
	week, err := parseWeekStart(doc.RelevantWeekStartDate)
	if err != nil {
		return err
	}
	schedule, err := json.Marshal(doc.Schedule)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	notes := doc.Notes
	if notes == nil {
		notes = []model.Note{}
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	names := doc.WorkerNames
	if names == nil {
		names = map[string]string{}
	}
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to encode worker names: %w", err)
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE results
		SET week_marker = 'previous'
		WHERE hotel_name = $1 AND week_marker = 'current'
	`, doc.HotelName)
	if err != nil {
		return fmt.Errorf("failed to demote current result: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO results (`+resultColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, 'current', $7, $8)
		ON CONFLICT (hotel_name, relevant_week_start) DO UPDATE SET
			id = EXCLUDED.id,
			generated_at = EXCLUDED.generated_at,
			schedule = EXCLUDED.schedule,
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			week_marker = 'current',
			id_to_name = EXCLUDED.id_to_name
	`, id, doc.HotelName, doc.GeneratedAt, schedule, string(doc.Status), notesJSON, week, namesJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert result: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	doc.WeekMarker = model.WeekCurrent
	return nil
}
