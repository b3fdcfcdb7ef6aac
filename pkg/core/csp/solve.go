package csp

import (
	"context"
	"time"

	"github.com/crillab/gophersat/solver"
)

// Status classifies the outcome of a solve
type Status string

const (
	// StatusOptimal means the returned solution is proven minimal
	StatusOptimal Status = "OPTIMAL"
	// StatusFeasible means a solution was found but the solve stopped before proving optimality
	StatusFeasible Status = "FEASIBLE"
	// StatusInfeasible means the hard constraints admit no solution
	StatusInfeasible Status = "INFEASIBLE"
	// StatusUnknown means the solve stopped before finding any solution
	StatusUnknown Status = "UNKNOWN"
)

// HasSolution reports whether Values holds a usable assignment
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Params bounds a solve. A zero TimeLimit means no limit.
type Params struct {
	TimeLimit time.Duration
}

// Solution is the best assignment found
type Solution struct {
	Status    Status
	Values    []int64
	Objective int64

	// Vacancies is the number of variables left on their vacant value
	Vacancies int

	// Improvements counts the successively better solutions the engine reported
	Improvements int

	Elapsed time.Duration
}

// Value returns the value assigned to a variable, or 0 when the solution
// holds no assignment for it
func (s Solution) Value(v VarID) int64 {
	if !s.Status.HasSolution() || v < 0 || int(v) >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}

// fillShare is the part of the time budget spent checking whether every
// variable that can take a real value does
const fillShare = 4

// Solve minimises the vacancy cost first and the soft band penalties second.
//
// The vacancy phase asks the engine for a solution leaving only the variables
// without any real value vacant. When that is refuted or times out, it falls
// back to minimising the number of vacancies. The penalty phase then keeps the
// vacancy count and minimises the band penalties.
//
// The engine cannot be interrupted inside a single search; when the budget runs
// out the running search is abandoned and finishes in the background.
func Solve(ctx context.Context, m *Model, params Params) (Solution, error) {
	if m.err != nil {
		return Solution{}, m.err
	}

	start := time.Now()
	if params.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.TimeLimit)
		defer cancel()
	}

	if len(m.vars) == 0 {
		return Solution{Status: StatusOptimal, Values: []int64{}, Elapsed: time.Since(start)}, nil
	}
	if ctx.Err() != nil {
		return Solution{Status: StatusUnknown, Elapsed: time.Since(start)}, nil
	}

	e := encode(m)
	sol := Solution{}
	var best []bool
	proven := false

	// Vacancy phase
	floor := 0
	for i := range m.vars {
		if len(e.assign[i]) == 0 {
			floor++
		}
	}
	fillCtx := ctx
	if params.TimeLimit > 0 {
		var cancel context.CancelFunc
		fillCtx, cancel = context.WithTimeout(ctx, params.TimeLimit/fillShare)
		defer cancel()
	}
	status, bools := satisfy(fillCtx, e.problem(e.vacancyCap(floor)...))
	switch status {
	case solver.Sat:
		best, proven = bools, true
		sol.Improvements++
	default:
		pb := e.problem()
		pb.SetCostFunc(toSolverLits(e.vacant), ones(len(e.vacant)))
		var n int
		best, proven, n = optimize(ctx, pb)
		sol.Improvements += n
	}

	if best == nil {
		sol.Elapsed = time.Since(start)
		sol.Status = StatusUnknown
		if proven {
			sol.Status = StatusInfeasible
		}
		return sol, nil
	}

	// Penalty phase
	if len(e.penalties) > 0 && ctx.Err() == nil {
		vacancies := countTrue(best, e.vacant)
		pb := e.problem(e.vacancyCap(vacancies)...)
		pb.SetCostFunc(toSolverLits(e.penalties), e.weights)
		better, done, n := optimize(ctx, pb)
		sol.Improvements += n
		if better != nil {
			best = better
		}
		proven = proven && done
	} else if len(e.penalties) > 0 {
		proven = false
	}

	sol.Values = e.decode(m, best)
	sol.Objective, sol.Vacancies = m.evaluate(sol.Values)
	sol.Status = StatusFeasible
	if proven {
		sol.Status = StatusOptimal
	}
	sol.Elapsed = time.Since(start)
	return sol, nil
}

type satResult struct {
	status solver.Status
	model  []bool
}

// satisfy runs one decision search under ctx. It returns solver.Indet when ctx
// ends first.
func satisfy(ctx context.Context, pb *solver.Problem) (solver.Status, []bool) {
	s := solver.New(pb)
	done := make(chan satResult, 1)
	go func() {
		status := s.Solve()
		res := satResult{status: status}
		if status == solver.Sat {
			res.model = s.Model()
		}
		done <- res
	}()

	select {
	case res := <-done:
		return res.status, res.model
	case <-ctx.Done():
		return solver.Indet, nil
	}
}

// optimize minimises the problem's cost function under ctx. It returns the
// best model seen, whether the search ran to completion, and the number of
// improving models reported. A completed search without a model proves the
// problem unsatisfiable.
func optimize(ctx context.Context, pb *solver.Problem) ([]bool, bool, int) {
	s := solver.New(pb)
	results := make(chan solver.Result)
	stop := make(chan struct{})
	done := make(chan solver.Result, 1)
	go func() {
		done <- s.Optimal(results, stop)
	}()

	var best []bool
	improvements := 0
	for {
		select {
		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if res.Status == solver.Sat && res.Model != nil {
				best = append([]bool(nil), res.Model...)
				improvements++
			}
		case res := <-done:
			if res.Status == solver.Sat && res.Model != nil {
				best = append([]bool(nil), res.Model...)
			}
			return best, true, improvements
		case <-ctx.Done():
			close(stop)
			go drain(results, done)
			return best, false, improvements
		}
	}
}

// drain consumes what an abandoned search still reports so it can exit
func drain(results chan solver.Result, done chan solver.Result) {
	for {
		select {
		case _, ok := <-results:
			if !ok {
				results = nil
			}
		case <-done:
			return
		}
	}
}

// evaluate returns the objective and vacancy count of an assignment
func (m *Model) evaluate(values []int64) (int64, int) {
	var objective int64
	vacancies := 0
	for i, v := range values {
		if v == m.vars[i].vacant {
			objective += m.vars[i].vacantCost
			vacancies++
		}
	}

	counts := make([]int64, len(m.counters))
	for c, ctr := range m.counters {
		for _, l := range ctr.lits {
			if values[l.Var] == l.Value {
				counts[c]++
			}
		}
	}
	for _, band := range m.bands {
		diff := counts[band.a] - counts[band.b]
		if diff < 0 {
			diff = -diff
		}
		if diff > band.band {
			objective += band.weight * (diff - band.band)
		}
	}
	return objective, vacancies
}

func ones(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func countTrue(bools []bool, vars []int) int {
	n := 0
	for _, x := range vars {
		if x-1 < len(bools) && bools[x-1] {
			n++
		}
	}
	return n
}
