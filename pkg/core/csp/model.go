// Package csp models finite-domain assignment problems and solves them with a
// pseudo-boolean SAT engine.
//
// Every variable carries a list of real values plus exactly one vacant value.
// The vacant value takes part in no hard constraint and carries a fixed cost,
// so a model built here always has at least one solution: every variable
// vacant. Solving first minimises the vacancy cost, then the soft penalties.
package csp

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrValueCollision is returned when a vacant value is reused or overlaps a real value
	ErrValueCollision = errors.New("vacant value collides with another value")
	// ErrUnknownVar is returned when a constraint names a variable the model does not have
	ErrUnknownVar = errors.New("unknown variable")
	// ErrInvalidConstraint is returned for malformed constraints
	ErrInvalidConstraint = errors.New("invalid constraint")
)

// VarID identifies a variable within a model
type VarID int

// CounterID identifies a counter within a model
type CounterID int

// Lit is the literal "Var takes Value"
type Lit struct {
	Var   VarID
	Value int64
}

type variable struct {
	name       string
	values     []int64
	vacant     int64
	vacantCost int64
	forbidden  map[int64]bool
	chain      int
	chainPos   int
}

type atMost struct {
	lits []Lit
	k    int
}

type atMostGroups struct {
	groups [][]Lit
	k      int
}

type counter struct {
	lits []Lit
	max  int
}

type softBand struct {
	a, b   CounterID
	band   int64
	weight int64
}

// Model collects variables, hard constraints and soft terms. The first
// construction error is kept and reported by Err and Solve.
type Model struct {
	vars     []variable
	atMost   []atMost
	groups   []atMostGroups
	chains   [][]VarID
	counters []counter
	bands    []softBand

	realValues map[int64]bool
	vacants    map[int64]bool

	err error
}

// NewModel returns an empty model
func NewModel() *Model {
	return &Model{
		realValues: make(map[int64]bool),
		vacants:    make(map[int64]bool),
	}
}

// NewVar adds a variable with the given real values and its vacant value.
// Duplicate real values are collapsed. The vacant value must not be used by
// any other variable, vacant or real.
func (m *Model) NewVar(name string, values []int64, vacant, vacantCost int64) (VarID, error) {
	if m.vacants[vacant] || m.realValues[vacant] {
		return -1, fmt.Errorf("%w: %s vacant value %d", ErrValueCollision, name, vacant)
	}

	uniq := make([]int64, 0, len(values))
	seen := make(map[int64]bool, len(values))
	for _, v := range values {
		if v == vacant || m.vacants[v] {
			return -1, fmt.Errorf("%w: %s real value %d", ErrValueCollision, name, v)
		}
		if !seen[v] {
			seen[v] = true
			uniq = append(uniq, v)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	for _, v := range uniq {
		m.realValues[v] = true
	}
	m.vacants[vacant] = true

	m.vars = append(m.vars, variable{
		name:       name,
		values:     uniq,
		vacant:     vacant,
		vacantCost: vacantCost,
		forbidden:  make(map[int64]bool),
		chain:      -1,
	})
	return VarID(len(m.vars) - 1), nil
}

// NumVars returns the number of variables in the model
func (m *Model) NumVars() int { return len(m.vars) }

// Name returns the name a variable was created with
func (m *Model) Name(v VarID) string {
	if !m.valid(v) {
		return ""
	}
	return m.vars[v].name
}

// Vacant returns the vacant value of a variable
func (m *Model) Vacant(v VarID) int64 {
	if !m.valid(v) {
		return 0
	}
	return m.vars[v].vacant
}

// Domain returns the real values still allowed for a variable, ascending.
// The vacant value is not included.
func (m *Model) Domain(v VarID) []int64 {
	if !m.valid(v) {
		return nil
	}
	out := make([]int64, 0, len(m.vars[v].values))
	for _, val := range m.vars[v].values {
		if !m.vars[v].forbidden[val] {
			out = append(out, val)
		}
	}
	return out
}

// Err returns the first construction error, if any
func (m *Model) Err() error { return m.err }

func (m *Model) valid(v VarID) bool {
	return v >= 0 && int(v) < len(m.vars)
}

func (m *Model) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

func (m *Model) checkLits(lits []Lit) bool {
	for _, l := range lits {
		if !m.valid(l.Var) {
			m.fail(fmt.Errorf("%w: %d", ErrUnknownVar, l.Var))
			return false
		}
	}
	return true
}

// AtMost requires that at most k of the literals hold. Literals on a vacant
// value are dropped since vacancies join no hard constraint.
func (m *Model) AtMost(lits []Lit, k int) {
	if k < 0 {
		m.fail(fmt.Errorf("%w: at-most bound %d", ErrInvalidConstraint, k))
		return
	}
	if !m.checkLits(lits) {
		return
	}
	lits = m.realLits(lits)
	if len(lits) <= k {
		return
	}
	m.atMost = append(m.atMost, atMost{lits: lits, k: k})
}

// AtMostGroups requires that at most k groups contain a literal that holds.
// A group counts once however many of its literals hold.
func (m *Model) AtMostGroups(groups [][]Lit, k int) {
	if k < 0 {
		m.fail(fmt.Errorf("%w: at-most-groups bound %d", ErrInvalidConstraint, k))
		return
	}
	var kept [][]Lit
	for _, g := range groups {
		if !m.checkLits(g) {
			return
		}
		g = m.realLits(g)
		if len(g) > 0 {
			kept = append(kept, g)
		}
	}
	if len(kept) <= k {
		return
	}
	m.groups = append(m.groups, atMostGroups{groups: kept, k: k})
}

// Forbid removes a real value from a variable's domain
func (m *Model) Forbid(v VarID, value int64) {
	if !m.valid(v) {
		m.fail(fmt.Errorf("%w: %d", ErrUnknownVar, v))
		return
	}
	if m.vars[v].vacant == value {
		m.fail(fmt.Errorf("%w: cannot forbid the vacant value of %s", ErrInvalidConstraint, m.vars[v].name))
		return
	}
	m.vars[v].forbidden[value] = true
}

// Chain breaks symmetry between interchangeable variables: along the chain
// real values strictly increase and vacancies form a suffix. Chained variables
// must share the same real domain and vacancy cost and play the same role in
// every constraint.
func (m *Model) Chain(vars []VarID) {
	if len(vars) < 2 {
		return
	}
	for _, v := range vars {
		if !m.valid(v) {
			m.fail(fmt.Errorf("%w: %d", ErrUnknownVar, v))
			return
		}
		if m.vars[v].chain >= 0 {
			m.fail(fmt.Errorf("%w: %s already chained", ErrInvalidConstraint, m.vars[v].name))
			return
		}
	}
	idx := len(m.chains)
	for pos, v := range vars {
		m.vars[v].chain = idx
		m.vars[v].chainPos = pos
	}
	m.chains = append(m.chains, append([]VarID(nil), vars...))
}

// Counter adds a counter holding the number of literals that are true. max
// caps the counter and is enforced as a hard limit; callers pass the bound the
// other constraints already imply so the cap removes no solution.
func (m *Model) Counter(lits []Lit, max int) CounterID {
	if max < 0 {
		m.fail(fmt.Errorf("%w: counter bound %d", ErrInvalidConstraint, max))
		return -1
	}
	if !m.checkLits(lits) {
		return -1
	}
	lits = m.realLits(lits)
	if max > len(lits) {
		max = len(lits)
	}
	m.counters = append(m.counters, counter{lits: lits, max: max})
	return CounterID(len(m.counters) - 1)
}

// SoftBand penalises weight * max(0, |a-b| - band)
func (m *Model) SoftBand(a, b CounterID, band, weight int64) {
	if a < 0 || int(a) >= len(m.counters) || b < 0 || int(b) >= len(m.counters) {
		m.fail(fmt.Errorf("%w: unknown counter in soft band", ErrInvalidConstraint))
		return
	}
	if band < 0 || weight < 0 {
		m.fail(fmt.Errorf("%w: negative band or weight", ErrInvalidConstraint))
		return
	}
	if weight == 0 {
		return
	}
	m.bands = append(m.bands, softBand{a: a, b: b, band: band, weight: weight})
}

// realLits drops literals on vacant values and duplicates
func (m *Model) realLits(lits []Lit) []Lit {
	out := make([]Lit, 0, len(lits))
	seen := make(map[Lit]bool, len(lits))
	for _, l := range lits {
		if m.vars[l.Var].vacant == l.Value || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
