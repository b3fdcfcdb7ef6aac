// Package eligibility works out which workers may fill each slot from their
// qualifications and declared availability.
package eligibility

import (
	"sort"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// Pool holds the worker ids available for one day and shift, by tier. A worker
// is listed under every tier their qualification covers.
type Pool struct {
	Managers      []model.WorkerID
	WithWeapon    []model.WorkerID
	WithoutWeapon []model.WorkerID
}

// Index maps day -> shift -> pool of available workers
type Index map[model.Day]map[model.ShiftPeriod]*Pool

// BuildIndex indexes every worker's declared availability once.
//
// Managers go under all three tiers, weapon-certified workers under with and
// without weapon, everyone else under without weapon only. Ids in the
// placeholder range (negative) are never indexed.
func BuildIndex(workers []model.Worker) Index {
	idx := make(Index)
	seen := make(map[model.Day]map[model.ShiftPeriod]map[model.WorkerID]bool)

	for _, w := range workers {
		if w.ID < 0 {
			continue
		}
		for _, a := range w.Availability {
			for _, shift := range a.Shifts {
				if seen[a.Day] == nil {
					seen[a.Day] = make(map[model.ShiftPeriod]map[model.WorkerID]bool)
					idx[a.Day] = make(map[model.ShiftPeriod]*Pool)
				}
				if seen[a.Day][shift] == nil {
					seen[a.Day][shift] = make(map[model.WorkerID]bool)
					idx[a.Day][shift] = &Pool{}
				}
				if seen[a.Day][shift][w.ID] {
					continue
				}
				seen[a.Day][shift][w.ID] = true

				pool := idx[a.Day][shift]
				switch w.Tier() {
				case model.TierManager:
					pool.Managers = append(pool.Managers, w.ID)
					pool.WithWeapon = append(pool.WithWeapon, w.ID)
					pool.WithoutWeapon = append(pool.WithoutWeapon, w.ID)
				case model.TierWeaponCertified:
					pool.WithWeapon = append(pool.WithWeapon, w.ID)
					pool.WithoutWeapon = append(pool.WithoutWeapon, w.ID)
				default:
					pool.WithoutWeapon = append(pool.WithoutWeapon, w.ID)
				}
			}
		}
	}

	return idx
}

// Lookup returns the pool for a day and shift, or nil if nobody declared it
func (idx Index) Lookup(day model.Day, shift model.ShiftPeriod) *Pool {
	if shifts, ok := idx[day]; ok {
		return shifts[shift]
	}
	return nil
}

// Eligible pairs a slot with the real workers who may fill it
type Eligible struct {
	Slot    model.Slot
	Workers []model.WorkerID
}

// Resolve computes the eligibility set of every slot. Supervisor slots draw
// from managers only, weapon slots from managers and weapon holders, all other
// slots from everyone. A slot nobody declared availability for gets an empty
// set.
func Resolve(slots []model.Slot, idx Index) []Eligible {
	out := make([]Eligible, len(slots))
	for i, slot := range slots {
		out[i] = Eligible{Slot: slot, Workers: []model.WorkerID{}}

		pool := idx.Lookup(slot.Day, slot.Shift)
		if pool == nil {
			continue
		}

		set := make(map[model.WorkerID]bool)
		add := func(ids []model.WorkerID) {
			for _, id := range ids {
				set[id] = true
			}
		}

		switch {
		case slot.Supervisor:
			add(pool.Managers)
		case slot.WeaponRequired:
			add(pool.Managers)
			add(pool.WithWeapon)
		default:
			add(pool.Managers)
			add(pool.WithWeapon)
			add(pool.WithoutWeapon)
		}

		ids := make([]model.WorkerID, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		out[i].Workers = ids
	}
	return out
}
