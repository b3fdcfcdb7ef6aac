// Package scheduler turns a hotel's weekly requirements and its workers'
// availability into a solved, materialized week.
//
// A run chains six stages strictly in order: slot expansion, eligibility,
// domain compilation, constraint encoding, solving and materialization. A
// failure before solving aborts the run without touching the solver.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/csp"
	"github.com/jakechorley/guard-rota/pkg/core/eligibility"
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/slots"
)

// Config tunes a Scheduler. Zero fields fall back to the defaults.
type Config struct {
	// Policy holds the rule constants; the zero Policy means DefaultPolicy
	Policy Policy

	// TimeLimit bounds each solve
	TimeLimit time.Duration

	// Now stamps generated documents
	Now func() time.Time
}

// Scheduler runs the scheduling pipeline for one hotel and week at a time
type Scheduler struct {
	policy    Policy
	timeLimit time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a Scheduler
func New(cfg Config, logger *zap.Logger) *Scheduler {
	s := &Scheduler{
		policy:    cfg.Policy,
		timeLimit: cfg.TimeLimit,
		now:       cfg.Now,
		logger:    logger,
	}
	if s.policy == (Policy{}) {
		s.policy = DefaultPolicy()
	}
	if s.timeLimit <= 0 {
		s.timeLimit = DefaultTimeLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Policy returns the rule constants the scheduler encodes
func (s *Scheduler) Policy() Policy { return s.policy }

// Input is everything one run reads
type Input struct {
	Hotel   *model.Hotel
	Workers []model.Worker

	// PreviousSchedule is last week's persisted schedule, nil if there is none
	PreviousSchedule model.ScheduleByDay

	// WeekStart is the Sunday the schedule covers
	WeekStart time.Time
}

// Outcome is a solved and materialized week
type Outcome struct {
	Result       *model.ResultDocument
	SolverStatus csp.Status
	Objective    int64
	Improvements int
	Elapsed      time.Duration
	Assignments  []Assignment

	// CarryOver lists the workers barred from Sunday morning this week
	CarryOver []model.WorkerID

	// Availability is each real worker's declared (day, shift) count
	Availability map[model.WorkerID]int

	Policy Policy
}

// Unfilled returns the number of slots left on their sentinel
func (o *Outcome) Unfilled() int {
	n := 0
	for _, a := range o.Assignments {
		if a.Assignee != nil && a.Assignee.IsSentinel() {
			n++
		}
	}
	return n
}

// Run executes the pipeline. Missing or malformed hotel and worker data fail
// with an error wrapping slots.ErrNoData before any solving starts. A solve
// without any assignment fails with ErrSolverInfeasible.
func (s *Scheduler) Run(ctx context.Context, in Input) (*Outcome, error) {
	logger := s.logger
	if in.Hotel != nil {
		logger = logger.With(zap.String("hotel", in.Hotel.Name))
	}

	// Expand requirement table into slots
	slotList, err := slots.Expand(in.Hotel, in.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to expand slots: %w", err)
	}
	for _, w := range in.Workers {
		if w.ID < 0 {
			// Ids in the sentinel range are never scheduled
			logger.Warn("Skipping worker with reserved id", zap.Int64("worker_id", int64(w.ID)), zap.String("name", w.Name))
			continue
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", slots.ErrNoData, err)
		}
	}
	logger.Debug("Expanded slots", zap.Int("slots", len(slotList)), zap.Int("workers", len(in.Workers)))

	// Resolve who may fill each slot
	eligible := eligibility.Resolve(slotList, eligibility.BuildIndex(in.Workers))
	vars := Compile(eligible)

	empty := 0
	for _, v := range vars {
		if len(v.Domain) == 0 {
			empty++
		}
	}
	if empty > 0 {
		logger.Info("Some slots have no eligible workers", zap.Int("slots", empty))
	}

	// Workers from last week's Saturday evening may not open this week
	var carryOver []model.WorkerID
	if in.PreviousSchedule != nil {
		carryOver = in.PreviousSchedule.SaturdayEveningWorkers()
		logger.Debug("Carry-over workers found", zap.Int("count", len(carryOver)))
	}

	enc, err := Encode(vars, in.Workers, carryOver, s.policy)
	if err != nil {
		return nil, err
	}

	logger.Debug("Solving", zap.Int("variables", enc.Model.NumVars()), zap.Duration("time_limit", s.timeLimit))
	sol, err := solve(ctx, enc, s.timeLimit)
	if err != nil {
		logger.Error("Solver failed", zap.Error(err))
		return nil, err
	}
	logger.Info("Solver finished",
		zap.String("status", string(sol.Status)),
		zap.Int64("objective", sol.Objective),
		zap.Int("vacancies", sol.Vacancies),
		zap.Int("improvements", sol.Improvements),
		zap.Duration("elapsed", sol.Elapsed))

	assignments, result := Materialize(vars, sol.Values, in.Hotel, in.Workers, in.WeekStart, s.now())

	availability := make(map[model.WorkerID]int, len(in.Workers))
	for _, w := range realWorkers(in.Workers) {
		availability[w.ID] = w.AvailabilityCount()
	}

	outcome := &Outcome{
		Result:       result,
		SolverStatus: sol.Status,
		Objective:    sol.Objective,
		Improvements: sol.Improvements,
		Elapsed:      sol.Elapsed,
		Assignments:  assignments,
		CarryOver:    carryOver,
		Availability: availability,
		Policy:       s.policy,
	}

	logger.Info("Schedule materialized",
		zap.String("status", string(result.Status)),
		zap.Int("slots", len(assignments)),
		zap.Int("unfilled", outcome.Unfilled()))

	return outcome, nil
}

// Verify re-checks a materialized week: every slot holds a value from its own
// domain, every hard rule holds, and the status and notes agree with the
// number of unfilled slots.
func Verify(o *Outcome) []Violation {
	var out []Violation

	for _, a := range o.Assignments {
		slot := a.Variable.Slot.Name
		switch assignee := a.Assignee.(type) {
		case model.RealWorker:
			if !slices.Contains(a.Variable.Domain, assignee.ID) {
				out = append(out, Violation{
					Rule:        "Domain",
					Slot:        slot,
					WorkerID:    assignee.ID,
					Description: "worker is not eligible for the slot",
				})
			}
		case model.Sentinel:
			if assignee != a.Variable.Sentinel {
				out = append(out, Violation{
					Rule:        "Domain",
					Slot:        slot,
					Description: fmt.Sprintf("holds the sentinel of slot %s", assignee.Slot),
				})
			}
		default:
			out = append(out, Violation{Rule: "Domain", Slot: slot, Description: "slot has no value"})
		}
	}

	wk := newWeek(o)
	for _, r := range o.Policy.rules() {
		out = append(out, r.check(wk)...)
	}

	unfilled := o.Unfilled()
	if o.Result != nil {
		if len(o.Result.Notes) != unfilled {
			out = append(out, Violation{
				Rule:        "Status",
				Description: fmt.Sprintf("%d notes for %d unfilled slots", len(o.Result.Notes), unfilled),
			})
		}
		if (unfilled == 0) != (o.Result.Status == model.StatusFull) {
			out = append(out, Violation{
				Rule:        "Status",
				Description: fmt.Sprintf("status %s with %d unfilled slots", o.Result.Status, unfilled),
			})
		}
	}

	return out
}

// VerifyErr wraps Verify into a single error, nil when the week is valid
func VerifyErr(o *Outcome) error {
	violations := Verify(o)
	if len(violations) == 0 {
		return nil
	}
	errs := make([]error, len(violations))
	for i, v := range violations {
		errs[i] = fmt.Errorf("%s: %s (slot %q, worker %d)", v.Rule, v.Description, v.Slot, v.WorkerID)
	}
	return errors.Join(errs...)
}
