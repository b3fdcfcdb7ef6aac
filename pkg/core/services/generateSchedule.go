package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/scheduler"
	"github.com/jakechorley/guard-rota/pkg/core/slots"
	"github.com/jakechorley/guard-rota/pkg/db"
)

// Runner solves one week
type Runner interface {
	Run(ctx context.Context, in scheduler.Input) (*scheduler.Outcome, error)
}

// Locker serialises runs for the same hotel and week. The returned function
// releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(context.Context) error, error)
}

// ResultHook is called after a result document has been persisted
type ResultHook interface {
	Name() string
	HandleResult(ctx context.Context, manager *model.Manager, doc *model.ResultDocument) error
}

// GenerateDeps groups the collaborators of GenerateSchedule
type GenerateDeps struct {
	Store     db.SchedulingStore
	Scheduler Runner

	// Locker is optional
	Locker Locker

	// Hooks run in order after a successful save
	Hooks []ResultHook

	// Now defaults to time.Now and picks the default target week
	Now func() time.Time
}

// GenerateParams selects the run
type GenerateParams struct {
	ManagerID model.WorkerID

	// WeekStart is the Sunday to schedule; zero means the next Sunday
	WeekStart time.Time

	// DryRun solves and verifies without saving or calling hooks
	DryRun bool
}

// GenerateResult is the outcome of GenerateSchedule
type GenerateResult struct {
	Manager   *model.Manager
	Outcome   *scheduler.Outcome
	Result    *model.ResultDocument
	WeekStart time.Time
	Persisted bool

	// PersistErr is set when the week was solved but could not be saved
	PersistErr error

	// HookErrs maps a failed hook's name to its error
	HookErrs map[string]error
}

// LockKey is the lock name of a hotel and week
func LockKey(hotel string, weekStart time.Time) string {
	return fmt.Sprintf("guard-rota:%s:%s", hotel, weekStart.Format(model.DateFormat))
}

// GenerateSchedule resolves the manager's hotel, loads its requirements,
// workers and last week's schedule, solves the target week and saves it as
// the hotel's current result.
//
// Missing data fails with ErrDataUnavailable before solving. A solver or
// verification failure is returned and nothing is saved. A save failure does
// not fail the call: it is logged and reported in GenerateResult.PersistErr.
func GenerateSchedule(ctx context.Context, deps GenerateDeps, logger *zap.Logger, params GenerateParams) (*GenerateResult, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	weekStart := params.WeekStart
	if weekStart.IsZero() {
		weekStart = NextWeekStart(now())
	} else if weekStart.Weekday() != time.Sunday {
		return nil, fmt.Errorf("%w: week start %s is not a Sunday", ErrInvalidInput, weekStart.Format(model.DateFormat))
	}

	logger = logger.With(zap.Int64("manager_id", int64(params.ManagerID)), zap.String("week_start", weekStart.Format(model.DateFormat)))
	logger.Debug("Generating schedule", zap.Bool("dry_run", params.DryRun))

	// Resolve the hotel through the manager
	manager, err := deps.Store.GetManager(ctx, params.ManagerID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch manager %d: %w", ErrDataUnavailable, params.ManagerID, err)
	}
	if manager.Workplace == "" {
		return nil, fmt.Errorf("%w: manager %d has no workplace", ErrDataUnavailable, params.ManagerID)
	}
	logger = logger.With(zap.String("hotel", manager.Workplace))

	if deps.Locker != nil && !params.DryRun {
		unlock, err := deps.Locker.Lock(ctx, LockKey(manager.Workplace, weekStart))
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", manager.Workplace, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	hotel, err := deps.Store.GetHotel(ctx, manager.Workplace)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch hotel: %w", ErrDataUnavailable, err)
	}
	if hotel.Requirements == nil {
		return nil, fmt.Errorf("%w: hotel %q has no requirement table", ErrDataUnavailable, hotel.Name)
	}

	workers, err := deps.Store.GetWorkers(ctx, manager.Workplace)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch workers: %w", ErrDataUnavailable, err)
	}
	logger.Debug("Loaded scheduling data", zap.Int("workers", len(workers)))

	// Last week's schedule feeds the carry-over rule
	var previous model.ScheduleByDay
	prevWeek := previousWeekStart(weekStart).Format(model.DateFormat)
	prevDoc, err := deps.Store.GetResult(ctx, manager.Workplace, prevWeek)
	switch {
	case err == nil:
		previous = prevDoc.Schedule
		logger.Debug("Found previous week's schedule", zap.String("previous_week", prevWeek))
	case errors.Is(err, db.ErrNotFound):
		logger.Info("No schedule for the previous week, skipping carry-over", zap.String("previous_week", prevWeek))
	default:
		return nil, fmt.Errorf("%w: failed to fetch previous schedule: %w", ErrDataUnavailable, err)
	}

	outcome, err := deps.Scheduler.Run(ctx, scheduler.Input{
		Hotel:            hotel,
		Workers:          workers,
		PreviousSchedule: previous,
		WeekStart:        weekStart,
	})
	if err != nil {
		if errors.Is(err, slots.ErrNoData) {
			return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		return nil, fmt.Errorf("failed to schedule %s: %w", hotel.Name, err)
	}

	if err := scheduler.VerifyErr(outcome); err != nil {
		logger.Error("Solved schedule failed verification", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	result := &GenerateResult{
		Manager:   manager,
		Outcome:   outcome,
		Result:    outcome.Result,
		WeekStart: weekStart,
	}

	if params.DryRun {
		logger.Info("Dry run, schedule not saved", zap.String("status", string(outcome.Result.Status)))
		return result, nil
	}

	if err := deps.Store.SaveResult(ctx, outcome.Result); err != nil {
		logger.Error("Failed to save schedule", zap.Error(err))
		result.PersistErr = fmt.Errorf("failed to save schedule: %w", err)
		return result, nil
	}
	result.Persisted = true
	logger.Info("Schedule saved",
		zap.String("result_id", outcome.Result.ID),
		zap.String("status", string(outcome.Result.Status)),
		zap.Int("unfilled", len(outcome.Result.Notes)))

	for _, hook := range deps.Hooks {
		if err := hook.HandleResult(ctx, manager, outcome.Result); err != nil {
			logger.Warn("Result hook failed", zap.String("hook", hook.Name()), zap.Error(err))
			if result.HookErrs == nil {
				result.HookErrs = make(map[string]error)
			}
			result.HookErrs[hook.Name()] = err
		}
	}

	return result, nil
}
