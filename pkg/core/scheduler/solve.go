package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/csp"
)

// DefaultTimeLimit is the wall-clock budget of one solve
const DefaultTimeLimit = 60 * time.Second

// ErrSolverInfeasible is returned when the solver ends without any assignment.
// Sentinels make every model satisfiable, so this points at a broken encoding
// and the run must not be persisted.
var ErrSolverInfeasible = errors.New("solver returned no assignment")

// solve runs the engine under the time budget. OPTIMAL and FEASIBLE results
// are usable; anything else is ErrSolverInfeasible.
func solve(ctx context.Context, enc *Encoding, timeLimit time.Duration) (csp.Solution, error) {
	sol, err := csp.Solve(ctx, enc.Model, csp.Params{TimeLimit: timeLimit})
	if err != nil {
		return sol, fmt.Errorf("failed to run solver: %w", err)
	}
	if !sol.Status.HasSolution() {
		return sol, fmt.Errorf("%w: status %s after %s", ErrSolverInfeasible, sol.Status, sol.Elapsed)
	}
	return sol, nil
}
