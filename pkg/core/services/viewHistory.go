package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// Week statuses of a worker in the history matrix
const (
	HistoryNoSchedule = "no_schedule"
	HistoryFetchError = "fetch_error"
	HistoryOff        = "off"
	HistoryWorked     = "worked"
)

// WorkerWeekStatus is a worker's record for a single week
type WorkerWeekStatus struct {
	Status   string `json:"status"`
	Shifts   int    `json:"shifts,omitempty"`   // shifts worked (only set when Status == "worked")
	Evenings int    `json:"evenings,omitempty"` // evening shifts among them
}

// ViewHistoryResult holds the per-worker shift counts of recent weeks
type ViewHistoryResult struct {
	Hotel    string                                         `json:"hotel"`
	Weeks    []string                                       `json:"weeks"`    // week starts, oldest first
	Workers  []model.Worker                                 `json:"workers"`  // sorted by name
	Matrix   map[model.WorkerID]map[string]WorkerWeekStatus `json:"matrix"`   // [workerID][weekStart] -> status
	Unfilled map[string]int                                 `json:"unfilled"` // [weekStart] -> unfilled slots
}

// HistoryStore defines the database operations needed
type HistoryStore interface {
	GetWorkers(ctx context.Context, workplace string) ([]model.Worker, error)
	GetResult(ctx context.Context, hotel, weekStart string) (*model.ResultDocument, error)
}

const maxConcurrentResultFetches = 4

// ViewHistory summarises how many shifts each worker of a hotel was given in
// the count weeks ending with lastWeek.
func ViewHistory(ctx context.Context, store HistoryStore, logger *zap.Logger, hotel string, lastWeek time.Time, count int) (*ViewHistoryResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: week count must be positive, got %d", ErrInvalidInput, count)
	}
	if lastWeek.Weekday() != time.Sunday {
		return nil, fmt.Errorf("%w: %s is not a Sunday", ErrInvalidInput, lastWeek.Format(model.DateFormat))
	}
	logger.Debug("Starting viewHistory", zap.String("hotel", hotel), zap.Int("count", count))

	weeks := make([]string, count)
	for i := 0; i < count; i++ {
		weeks[i] = lastWeek.AddDate(0, 0, -7*(count-1-i)).Format(model.DateFormat)
	}

	workers, err := store.GetWorkers(ctx, hotel)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}
	sort.Slice(workers, func(i, j int) bool {
		if workers[i].Name != workers[j].Name {
			return workers[i].Name < workers[j].Name
		}
		return workers[i].ID < workers[j].ID
	})

	// Fetch result documents in parallel with semaphore
	type fetchResult struct {
		week string
		doc  *model.ResultDocument
		err  error
	}

	resultChan := make(chan fetchResult, len(weeks))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrentResultFetches)

	for _, week := range weeks {
		wg.Add(1)
		go func(week string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			doc, err := store.GetResult(ctx, hotel, week)
			resultChan <- fetchResult{week: week, doc: doc, err: err}
		}(week)
	}

	wg.Wait()
	close(resultChan)

	docs := make(map[string]*model.ResultDocument)
	failed := make(map[string]bool)
	for r := range resultChan {
		switch {
		case r.err == nil:
			docs[r.week] = r.doc
		case errors.Is(r.err, db.ErrNotFound):
		default:
			failed[r.week] = true
			logger.Warn("Failed to fetch result", zap.String("week", r.week), zap.Error(r.err))
		}
	}

	matrix := make(map[model.WorkerID]map[string]WorkerWeekStatus, len(workers))
	unfilled := make(map[string]int)
	for _, w := range workers {
		matrix[w.ID] = make(map[string]WorkerWeekStatus, len(weeks))
	}

	for _, week := range weeks {
		doc, ok := docs[week]
		if !ok {
			status := HistoryNoSchedule
			if failed[week] {
				status = HistoryFetchError
			}
			for _, w := range workers {
				matrix[w.ID][week] = WorkerWeekStatus{Status: status}
			}
			continue
		}

		counts := make(map[model.WorkerID]*WorkerWeekStatus)
		for _, day := range model.Days {
			for _, shift := range model.ShiftPeriods {
				for _, entry := range doc.Schedule[day][shift] {
					if !entry.Real() {
						unfilled[week]++
						continue
					}
					id := model.WorkerID(entry.WorkerID)
					c, ok := counts[id]
					if !ok {
						c = &WorkerWeekStatus{Status: HistoryWorked}
						counts[id] = c
					}
					c.Shifts++
					if shift == model.Evening {
						c.Evenings++
					}
				}
			}
		}

		for _, w := range workers {
			if c, ok := counts[w.ID]; ok {
				matrix[w.ID][week] = *c
			} else {
				matrix[w.ID][week] = WorkerWeekStatus{Status: HistoryOff}
			}
		}
	}

	logger.Debug("ViewHistory completed",
		zap.Int("weeks", len(weeks)),
		zap.Int("schedules", len(docs)),
		zap.Int("workers", len(workers)))

	return &ViewHistoryResult{
		Hotel:    hotel,
		Weeks:    weeks,
		Workers:  workers,
		Matrix:   matrix,
		Unfilled: unfilled,
	}, nil
}
