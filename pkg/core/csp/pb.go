package csp

import (
	"github.com/crillab/gophersat/solver"
)

// encoding is a Model translated into pseudo-boolean constraints. Boolean
// variables are numbered from 1 as gophersat expects.
type encoding struct {
	nbVars  int
	constrs []solver.PBConstr

	// assign[i][value] is "variable i takes value"; vacant[i] is "variable i is vacant"
	assign []map[int64]int
	vacant []int

	// order[c][t] holds when counter c reaches t+1
	order [][]int

	// penalties are the soft band units with their weights
	penalties []int
	weights   []int
}

func (e *encoding) newVar() int {
	e.nbVars++
	return e.nbVars
}

func (e *encoding) clause(lits ...int) {
	e.constrs = append(e.constrs, solver.PropClause(lits...))
}

func (e *encoding) atMost(lits []int, k int) {
	if len(lits) <= k {
		return
	}
	e.constrs = append(e.constrs, solver.AtMost(lits, k))
}

func (e *encoding) atLeast(lits []int, k int) {
	if k <= 0 {
		return
	}
	e.constrs = append(e.constrs, solver.AtLeast(lits, k))
}

func (e *encoding) lit(l Lit) (int, bool) {
	x, ok := e.assign[l.Var][l.Value]
	return x, ok
}

// lits maps model literals to boolean variables. Literals on forbidden values
// can never hold and are dropped.
func (e *encoding) lits(ls []Lit) []int {
	out := make([]int, 0, len(ls))
	for _, l := range ls {
		if x, ok := e.lit(l); ok {
			out = append(out, x)
		}
	}
	return out
}

func negate(lits []int) []int {
	out := make([]int, len(lits))
	for i, l := range lits {
		out[i] = -l
	}
	return out
}

// encode translates the model. Each variable becomes one boolean per allowed
// real value plus a vacancy boolean, exactly one of which holds.
func encode(m *Model) *encoding {
	e := &encoding{
		assign: make([]map[int64]int, len(m.vars)),
		vacant: make([]int, len(m.vars)),
	}

	for i := range m.vars {
		domain := m.Domain(VarID(i))
		e.assign[i] = make(map[int64]int, len(domain))
		one := make([]int, 0, len(domain)+1)
		for _, v := range domain {
			x := e.newVar()
			e.assign[i][v] = x
			one = append(one, x)
		}
		e.vacant[i] = e.newVar()
		one = append(one, e.vacant[i])
		e.clause(one...)
		e.atMost(one, 1)
	}

	for _, am := range m.atMost {
		e.atMost(e.lits(am.lits), am.k)
	}

	// A group collapses into one boolean that holds when any member does
	for _, ag := range m.groups {
		active := make([]int, 0, len(ag.groups))
		for _, g := range ag.groups {
			members := e.lits(g)
			switch len(members) {
			case 0:
				continue
			case 1:
				active = append(active, members[0])
			default:
				z := e.newVar()
				for _, x := range members {
					e.clause(-x, z)
				}
				active = append(active, z)
			}
		}
		e.atMost(active, ag.k)
	}

	// Along a chain vacancies form a suffix and real values strictly increase
	for _, chain := range m.chains {
		for p := 0; p+1 < len(chain); p++ {
			a, b := int(chain[p]), int(chain[p+1])
			e.clause(-e.vacant[a], e.vacant[b])
			for _, v := range m.Domain(chain[p]) {
				for _, w := range m.Domain(chain[p+1]) {
					if w <= v {
						e.clause(-e.assign[a][v], -e.assign[b][w])
					}
				}
			}
		}
	}

	// Counters use an order encoding: sum(lits) == sum(order) and order[t+1]
	// implies order[t]
	e.order = make([][]int, len(m.counters))
	for c, ctr := range m.counters {
		lits := e.lits(ctr.lits)
		order := make([]int, min(ctr.max, len(lits)))
		for t := range order {
			order[t] = e.newVar()
			if t > 0 {
				e.clause(-order[t], order[t-1])
			}
		}
		e.order[c] = order
		e.atLeast(append(append([]int{}, lits...), negate(order)...), len(order))
		e.atLeast(append(append([]int{}, order...), negate(lits)...), len(lits))
	}

	for _, band := range m.bands {
		e.excess(band.a, band.b, int(band.band), int(band.weight))
		e.excess(band.b, band.a, int(band.band), int(band.weight))
	}

	return e
}

// excess adds one penalty unit for every step counter a exceeds counter b
// beyond the band. Unit s is forced when a >= t+band+s while b <= t for some t.
func (e *encoding) excess(a, b CounterID, band, weight int) {
	oa, ob := e.order[a], e.order[b]
	for s := 1; band+s <= len(oa); s++ {
		p := e.newVar()
		for t := 0; t+band+s <= len(oa); t++ {
			high := oa[t+band+s-1]
			if t < len(ob) {
				e.clause(-high, ob[t], p)
			} else {
				e.clause(-high, p)
			}
		}
		e.penalties = append(e.penalties, p)
		e.weights = append(e.weights, weight)
	}
}

// decode reads variable values out of a boolean model
func (e *encoding) decode(m *Model, bools []bool) []int64 {
	holds := func(x int) bool {
		return x-1 < len(bools) && bools[x-1]
	}
	values := make([]int64, len(m.vars))
	for i := range m.vars {
		values[i] = m.vars[i].vacant
		for v, x := range e.assign[i] {
			if holds(x) {
				values[i] = v
				break
			}
		}
	}
	return values
}

// vacancyCap limits the number of vacant variables to k
func (e *encoding) vacancyCap(k int) []solver.PBConstr {
	if k >= len(e.vacant) {
		return nil
	}
	return []solver.PBConstr{solver.AtMost(e.vacant, k)}
}

// problem builds a gophersat problem from the encoding plus extra constraints
func (e *encoding) problem(extra ...solver.PBConstr) *solver.Problem {
	constrs := make([]solver.PBConstr, 0, len(e.constrs)+len(extra))
	constrs = append(constrs, e.constrs...)
	constrs = append(constrs, extra...)
	return solver.ParsePBConstrs(constrs)
}

func toSolverLits(lits []int) []solver.Lit {
	out := make([]solver.Lit, len(lits))
	for i, l := range lits {
		out[i] = solver.IntToLit(int32(l))
	}
	return out
}
