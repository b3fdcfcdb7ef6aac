package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jakechorley/guard-rota/pkg/core/csp"
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// Encoding is a solver model built from compiled variables. Vars[i] is the
// solver variable of Variables[i].
type Encoding struct {
	Model     *csp.Model
	Vars      []csp.VarID
	Variables []Variable
}

// Encode builds the solver model: one variable per slot, every hard rule of
// the policy for every real worker, and the fairness and vacancy costs.
// carryOver lists the workers barred from Sunday morning.
func Encode(vars []Variable, workers []model.Worker, carryOver []model.WorkerID, policy Policy) (*Encoding, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduling policy: %w", err)
	}

	ws := &workspace{
		model:     csp.NewModel(),
		vars:      vars,
		ids:       make([]csp.VarID, len(vars)),
		workers:   realWorkers(workers),
		carryOver: carryOver,
		lits:      make(map[model.WorkerID]map[model.Day]map[model.ShiftPeriod][]csp.Lit),
	}

	for i, v := range vars {
		values := make([]int64, len(v.Domain))
		for j, id := range v.Domain {
			values[j] = int64(id)
		}
		id, err := ws.model.NewVar(v.Slot.Name, values, v.Sentinel.Code, policy.SentinelCost)
		if err != nil {
			return nil, fmt.Errorf("failed to add slot %s: %w", v.Slot.Name, err)
		}
		ws.ids[i] = id

		for _, worker := range v.Domain {
			ws.addLit(worker, v.Slot.Day, v.Slot.Shift, csp.Lit{Var: id, Value: int64(worker)})
		}
	}

	for _, r := range policy.rules() {
		r.encode(ws)
	}

	chainSiblings(ws)

	if err := ws.model.Err(); err != nil {
		return nil, fmt.Errorf("failed to encode constraints: %w", err)
	}

	return &Encoding{
		Model:     ws.model,
		Vars:      ws.ids,
		Variables: vars,
	}, nil
}

// realWorkers returns the workers outside the sentinel range, deduplicated and
// sorted by id
func realWorkers(workers []model.Worker) []model.Worker {
	seen := make(map[model.WorkerID]bool, len(workers))
	out := make([]model.Worker, 0, len(workers))
	for _, w := range workers {
		if w.ID < 0 || seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// chainSiblings orders interchangeable slots (same day, shift, position and
// weapon requirement with the same remaining domain) so the search does not
// revisit permutations of the same placement.
func chainSiblings(ws *workspace) {
	type siblingKey struct {
		day        model.Day
		shift      model.ShiftPeriod
		position   string
		weapon     bool
		supervisor bool
		domain     string
	}

	groups := make(map[siblingKey][]csp.VarID)
	var order []siblingKey
	for i, v := range ws.vars {
		key := siblingKey{
			day:        v.Slot.Day,
			shift:      v.Slot.Shift,
			position:   v.Slot.Position,
			weapon:     v.Slot.WeaponRequired,
			supervisor: v.Slot.Supervisor,
			domain:     domainKey(ws.model.Domain(ws.ids[i])),
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], ws.ids[i])
	}

	for _, key := range order {
		ws.model.Chain(groups[key])
	}
}

func domainKey(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
