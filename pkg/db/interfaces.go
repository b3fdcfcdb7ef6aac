// Package db declares the storage interfaces the services depend on. Both the
// Postgres and the MongoDB stores implement Store.
package db

import (
	"context"
	"errors"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ManagerStore resolves the manager a run is performed for
type ManagerStore interface {
	GetManager(ctx context.Context, id model.WorkerID) (*model.Manager, error)
}

// HotelStore reads and writes hotel requirement tables
type HotelStore interface {
	GetHotel(ctx context.Context, name string) (*model.Hotel, error)
	SaveRequirements(ctx context.Context, hotel string, table model.RequirementTable) error
}

// WorkerStore reads workers and records their declared availability
type WorkerStore interface {
	GetWorkers(ctx context.Context, workplace string) ([]model.Worker, error)
	GetWorker(ctx context.Context, id model.WorkerID) (*model.Worker, error)
	SetAvailability(ctx context.Context, id model.WorkerID, days []model.DayAvailability) error
}

// ResultStore persists result documents. SaveResult demotes the hotel's
// current document to previous and upserts the new one by hotel and week.
type ResultStore interface {
	GetResult(ctx context.Context, hotel, weekStart string) (*model.ResultDocument, error)
	GetLatestResult(ctx context.Context, hotel string) (*model.ResultDocument, error)
	SaveResult(ctx context.Context, doc *model.ResultDocument) error
}

// SchedulingStore is everything a scheduling run touches
type SchedulingStore interface {
	ManagerStore
	HotelStore
	WorkerStore
	ResultStore
}

// Store is a full storage backend
type Store interface {
	SchedulingStore
	Close(ctx context.Context) error
}
