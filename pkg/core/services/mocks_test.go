package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// mockStore is an in-memory db.SchedulingStore
type mockStore struct {
	mu       sync.Mutex
	managers map[model.WorkerID]*model.Manager
	hotels   map[string]*model.Hotel
	workers  []model.Worker
	results  []*model.ResultDocument

	getManagerErr error
	getHotelErr   error
	getWorkersErr error
	getResultErr  error
	saveResultErr error
	saved         []*model.ResultDocument
}

func newMockStore() *mockStore {
	return &mockStore{
		managers: map[model.WorkerID]*model.Manager{},
		hotels:   map[string]*model.Hotel{},
	}
}

func (m *mockStore) GetManager(ctx context.Context, id model.WorkerID) (*model.Manager, error) {
	if m.getManagerErr != nil {
		return nil, m.getManagerErr
	}
	mgr, ok := m.managers[id]
	if !ok {
		return nil, fmt.Errorf("manager %d: %w", id, db.ErrNotFound)
	}
	return mgr, nil
}

func (m *mockStore) GetHotel(ctx context.Context, name string) (*model.Hotel, error) {
	if m.getHotelErr != nil {
		return nil, m.getHotelErr
	}
	h, ok := m.hotels[name]
	if !ok {
		return nil, fmt.Errorf("hotel %q: %w", name, db.ErrNotFound)
	}
	return h, nil
}

func (m *mockStore) SaveRequirements(ctx context.Context, hotel string, table model.RequirementTable) error {
	m.hotels[hotel] = &model.Hotel{Name: hotel, Requirements: table}
	return nil
}

func (m *mockStore) GetWorkers(ctx context.Context, workplace string) ([]model.Worker, error) {
	if m.getWorkersErr != nil {
		return nil, m.getWorkersErr
	}
	out := []model.Worker{}
	for _, w := range m.workers {
		if w.Workplace == workplace {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockStore) GetWorker(ctx context.Context, id model.WorkerID) (*model.Worker, error) {
	for i := range m.workers {
		if m.workers[i].ID == id {
			w := m.workers[i]
			return &w, nil
		}
	}
	return nil, fmt.Errorf("worker %d: %w", id, db.ErrNotFound)
}

func (m *mockStore) SetAvailability(ctx context.Context, id model.WorkerID, days []model.DayAvailability) error {
	for i := range m.workers {
		if m.workers[i].ID == id {
			m.workers[i].Availability = days
			return nil
		}
	}
	return fmt.Errorf("worker %d: %w", id, db.ErrNotFound)
}

func (m *mockStore) GetResult(ctx context.Context, hotel, weekStart string) (*model.ResultDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getResultErr != nil {
		return nil, m.getResultErr
	}
	for _, r := range m.results {
		if r.HotelName == hotel && r.RelevantWeekStartDate == weekStart {
			return r, nil
		}
	}
	return nil, fmt.Errorf("result: %w", db.ErrNotFound)
}

func (m *mockStore) GetLatestResult(ctx context.Context, hotel string) (*model.ResultDocument, error) {
	var latest *model.ResultDocument
	for _, r := range m.results {
		if r.HotelName == hotel && (latest == nil || r.GeneratedAt.After(latest.GeneratedAt)) {
			latest = r
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("result: %w", db.ErrNotFound)
	}
	return latest, nil
}

func (m *mockStore) SaveResult(ctx context.Context, doc *model.ResultDocument) error {
	if m.saveResultErr != nil {
		return m.saveResultErr
	}
	for _, r := range m.results {
		if r.HotelName == doc.HotelName && r.WeekMarker == model.WeekCurrent {
			r.WeekMarker = model.WeekPrevious
		}
	}
	kept := m.results[:0]
	for _, r := range m.results {
		if r.HotelName != doc.HotelName || r.RelevantWeekStartDate != doc.RelevantWeekStartDate {
			kept = append(kept, r)
		}
	}
	doc.WeekMarker = model.WeekCurrent
	m.results = append(kept, doc)
	m.saved = append(m.saved, doc)
	return nil
}

// mockLocker records lock keys
type mockLocker struct {
	keys     []string
	released int
	err      error
}

func (l *mockLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

// mockHook records the documents it is given
type mockHook struct {
	name string
	docs []*model.ResultDocument
	err  error
}

func (h *mockHook) Name() string { return h.name }

func (h *mockHook) HandleResult(ctx context.Context, manager *model.Manager, doc *model.ResultDocument) error {
	h.docs = append(h.docs, doc)
	return h.err
}

var errBoom = errors.New("boom")
