package scheduler

import (
	"fmt"
	"sort"

	"github.com/jakechorley/guard-rota/pkg/core/csp"
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// Policy holds the tunable constants of the scheduling rules
type Policy struct {
	// MaxWorkingDays caps the distinct days a worker is placed in one week
	MaxWorkingDays int

	// FairnessBand is the allowed difference between any two workers' totals
	FairnessBand int64

	// FairnessWeight is the penalty per unit beyond the band
	FairnessWeight int64

	// SentinelCost is the penalty for each unfilled slot. It should dwarf the
	// fairness penalties so filling seats always wins.
	SentinelCost int64
}

// DefaultPolicy returns the reference rule constants
func DefaultPolicy() Policy {
	return Policy{
		MaxWorkingDays: 6,
		FairnessBand:   3,
		FairnessWeight: 1,
		SentinelCost:   100,
	}
}

// Validate checks the policy can be encoded
func (p Policy) Validate() error {
	if p.MaxWorkingDays < 1 || p.MaxWorkingDays > len(model.Days) {
		return fmt.Errorf("max working days must be between 1 and %d, got %d", len(model.Days), p.MaxWorkingDays)
	}
	if p.FairnessBand < 0 || p.FairnessWeight < 0 {
		return fmt.Errorf("fairness band and weight must not be negative")
	}
	if p.SentinelCost <= 0 {
		return fmt.Errorf("sentinel cost must be positive, got %d", p.SentinelCost)
	}
	return nil
}

// rules returns the rules in encoding order. The carry-over exclusion comes
// first since it narrows domains.
func (p Policy) rules() []rule {
	return []rule{
		carryOver{},
		oneShiftPerDay{},
		weeklyRest{maxDays: p.MaxWorkingDays},
		noEveningThenMorning{},
		availabilityCap{},
		fairness{band: p.FairnessBand, weight: p.FairnessWeight, maxDays: p.MaxWorkingDays},
	}
}

// Violation is a rule broken by a materialized week
type Violation struct {
	Rule        string
	Slot        string
	WorkerID    model.WorkerID
	Description string
}

// rule is one scheduling constraint: encode adds it to the solver model and
// check re-verifies a solved week against it
type rule interface {
	name() string
	encode(ws *workspace)
	check(wk *week) []Violation
}

// workspace is the encoder's view of the model under construction
type workspace struct {
	model     *csp.Model
	vars      []Variable
	ids       []csp.VarID
	workers   []model.Worker
	carryOver []model.WorkerID
	lits      map[model.WorkerID]map[model.Day]map[model.ShiftPeriod][]csp.Lit
}

func (ws *workspace) addLit(worker model.WorkerID, day model.Day, shift model.ShiftPeriod, lit csp.Lit) {
	if ws.lits[worker] == nil {
		ws.lits[worker] = make(map[model.Day]map[model.ShiftPeriod][]csp.Lit)
	}
	if ws.lits[worker][day] == nil {
		ws.lits[worker][day] = make(map[model.ShiftPeriod][]csp.Lit)
	}
	ws.lits[worker][day][shift] = append(ws.lits[worker][day][shift], lit)
}

func (ws *workspace) shiftLits(worker model.WorkerID, day model.Day, shift model.ShiftPeriod) []csp.Lit {
	return ws.lits[worker][day][shift]
}

func (ws *workspace) dayLits(worker model.WorkerID, day model.Day) []csp.Lit {
	var out []csp.Lit
	for _, shift := range model.ShiftPeriods {
		out = append(out, ws.lits[worker][day][shift]...)
	}
	return out
}

func (ws *workspace) allLits(worker model.WorkerID) []csp.Lit {
	var out []csp.Lit
	for _, day := range model.Days {
		out = append(out, ws.dayLits(worker, day)...)
	}
	return out
}

// week is the checker's view of a solved schedule
type week struct {
	carryOver    []model.WorkerID
	availability map[model.WorkerID]int
	// placed[worker][day][shift] lists the slots a real worker fills
	placed map[model.WorkerID]map[model.Day]map[model.ShiftPeriod][]string
}

func newWeek(o *Outcome) *week {
	wk := &week{
		carryOver:    o.CarryOver,
		availability: o.Availability,
		placed:       make(map[model.WorkerID]map[model.Day]map[model.ShiftPeriod][]string),
	}
	for _, a := range o.Assignments {
		worker, ok := a.Assignee.(model.RealWorker)
		if !ok {
			continue
		}
		slot := a.Variable.Slot
		if wk.placed[worker.ID] == nil {
			wk.placed[worker.ID] = make(map[model.Day]map[model.ShiftPeriod][]string)
		}
		if wk.placed[worker.ID][slot.Day] == nil {
			wk.placed[worker.ID][slot.Day] = make(map[model.ShiftPeriod][]string)
		}
		wk.placed[worker.ID][slot.Day][slot.Shift] = append(wk.placed[worker.ID][slot.Day][slot.Shift], slot.Name)
	}
	return wk
}

func (wk *week) workers() []model.WorkerID {
	ids := make([]model.WorkerID, 0, len(wk.placed))
	for id := range wk.placed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (wk *week) daySlots(worker model.WorkerID, day model.Day) []string {
	var out []string
	for _, shift := range model.ShiftPeriods {
		out = append(out, wk.placed[worker][day][shift]...)
	}
	return out
}

// carryOver bars last week's Saturday evening workers from Sunday morning
type carryOver struct{}

func (carryOver) name() string { return "CarryOver" }

func (carryOver) encode(ws *workspace) {
	for _, worker := range ws.carryOver {
		for i, v := range ws.vars {
			if v.Slot.Day == model.Sunday && v.Slot.Shift == model.Morning {
				ws.model.Forbid(ws.ids[i], int64(worker))
			}
		}
	}
}

func (r carryOver) check(wk *week) []Violation {
	var out []Violation
	for _, worker := range wk.carryOver {
		for _, slot := range wk.placed[worker][model.Sunday][model.Morning] {
			out = append(out, Violation{
				Rule:        r.name(),
				Slot:        slot,
				WorkerID:    worker,
				Description: "worked last Saturday evening and is placed on Sunday morning",
			})
		}
	}
	return out
}

// oneShiftPerDay allows each worker at most one slot per day
type oneShiftPerDay struct{}

func (oneShiftPerDay) name() string { return "OneShiftPerDay" }

func (oneShiftPerDay) encode(ws *workspace) {
	for _, w := range ws.workers {
		for _, day := range model.Days {
			ws.model.AtMost(ws.dayLits(w.ID, day), 1)
		}
	}
}

func (r oneShiftPerDay) check(wk *week) []Violation {
	var out []Violation
	for _, worker := range wk.workers() {
		for _, day := range model.Days {
			if slots := wk.daySlots(worker, day); len(slots) > 1 {
				out = append(out, Violation{
					Rule:        r.name(),
					Slot:        slots[1],
					WorkerID:    worker,
					Description: fmt.Sprintf("placed on %d slots on %s", len(slots), day),
				})
			}
		}
	}
	return out
}

// weeklyRest caps the number of distinct days a worker is placed
type weeklyRest struct {
	maxDays int
}

func (weeklyRest) name() string { return "WeeklyRest" }

func (r weeklyRest) encode(ws *workspace) {
	for _, w := range ws.workers {
		groups := make([][]csp.Lit, 0, len(model.Days))
		for _, day := range model.Days {
			groups = append(groups, ws.dayLits(w.ID, day))
		}
		ws.model.AtMostGroups(groups, r.maxDays)
	}
}

func (r weeklyRest) check(wk *week) []Violation {
	var out []Violation
	for _, worker := range wk.workers() {
		days := 0
		for _, day := range model.Days {
			if len(wk.daySlots(worker, day)) > 0 {
				days++
			}
		}
		if days > r.maxDays {
			out = append(out, Violation{
				Rule:        r.name(),
				WorkerID:    worker,
				Description: fmt.Sprintf("works %d days, limit is %d", days, r.maxDays),
			})
		}
	}
	return out
}

// noEveningThenMorning stops a worker closing one day and opening the next
type noEveningThenMorning struct{}

func (noEveningThenMorning) name() string { return "NoEveningThenMorning" }

func (noEveningThenMorning) encode(ws *workspace) {
	for _, w := range ws.workers {
		for i := 0; i+1 < len(model.Days); i++ {
			evening := ws.shiftLits(w.ID, model.Days[i], model.Evening)
			morning := ws.shiftLits(w.ID, model.Days[i+1], model.Morning)
			ws.model.AtMostGroups([][]csp.Lit{evening, morning}, 1)
		}
	}
}

func (r noEveningThenMorning) check(wk *week) []Violation {
	var out []Violation
	for _, worker := range wk.workers() {
		for i := 0; i+1 < len(model.Days); i++ {
			evening := wk.placed[worker][model.Days[i]][model.Evening]
			morning := wk.placed[worker][model.Days[i+1]][model.Morning]
			if len(evening) > 0 && len(morning) > 0 {
				out = append(out, Violation{
					Rule:        r.name(),
					Slot:        morning[0],
					WorkerID:    worker,
					Description: fmt.Sprintf("works %s evening and %s morning", model.Days[i], model.Days[i+1]),
				})
			}
		}
	}
	return out
}

// availabilityCap stops a worker being placed on more slots than they offered
type availabilityCap struct{}

func (availabilityCap) name() string { return "AvailabilityCap" }

func (availabilityCap) encode(ws *workspace) {
	for _, w := range ws.workers {
		ws.model.AtMost(ws.allLits(w.ID), w.AvailabilityCount())
	}
}

func (r availabilityCap) check(wk *week) []Violation {
	var out []Violation
	for _, worker := range wk.workers() {
		total := 0
		for _, day := range model.Days {
			total += len(wk.daySlots(worker, day))
		}
		if limit := wk.availability[worker]; total > limit {
			out = append(out, Violation{
				Rule:        r.name(),
				WorkerID:    worker,
				Description: fmt.Sprintf("placed on %d slots but offered %d", total, limit),
			})
		}
	}
	return out
}

// fairness penalises pairs of workers whose totals drift apart by more than
// the band. It is soft, so a solved week never violates it.
type fairness struct {
	band    int64
	weight  int64
	maxDays int
}

func (fairness) name() string { return "Fairness" }

func (r fairness) encode(ws *workspace) {
	counters := make([]csp.CounterID, len(ws.workers))
	for i, w := range ws.workers {
		// One shift a day on at most maxDays days, never beyond what was offered
		limit := min(w.AvailabilityCount(), r.maxDays)
		counters[i] = ws.model.Counter(ws.allLits(w.ID), limit)
	}
	for i := range counters {
		for j := i + 1; j < len(counters); j++ {
			ws.model.SoftBand(counters[i], counters[j], r.band, r.weight)
		}
	}
}

func (fairness) check(*week) []Violation { return nil }
