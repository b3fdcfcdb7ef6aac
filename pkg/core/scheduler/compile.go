package scheduler

import (
	"github.com/jakechorley/guard-rota/pkg/core/eligibility"
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// Variable is the decision for one slot: one of the eligible workers, or the
// slot's own sentinel when nobody can be placed.
type Variable struct {
	Slot     model.Slot
	Domain   []model.WorkerID
	Sentinel model.Sentinel
}

// SentinelCode returns the placeholder id of the slot at the given position.
// Codes are negative so they never meet a real worker id.
func SentinelCode(slotIndex int) int64 {
	return -int64(slotIndex + 1)
}

// Compile gives every slot a variable whose domain is its eligibility set plus
// a sentinel unique to that slot. A slot with nobody eligible still gets a
// variable; its only value is the sentinel.
func Compile(eligible []eligibility.Eligible) []Variable {
	vars := make([]Variable, len(eligible))
	for i, e := range eligible {
		domain := make([]model.WorkerID, len(e.Workers))
		copy(domain, e.Workers)
		vars[i] = Variable{
			Slot:   e.Slot,
			Domain: domain,
			Sentinel: model.Sentinel{
				Slot: e.Slot.Name,
				Code: SentinelCode(i),
			},
		}
	}
	return vars
}
