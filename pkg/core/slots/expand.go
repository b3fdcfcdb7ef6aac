// Package slots expands a hotel's weekly requirement table into individual
// shift slots, one per seat that needs a worker.
package slots

import (
	"errors"
	"fmt"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// ErrNoData signals that the hotel, its requirement table or its workers are
// missing or malformed. Callers abort the run before any solving starts.
var ErrNoData = errors.New("no scheduling data")

// Expand turns the hotel's requirement table into slots.
//
// The supervisor position produces exactly one manager-only slot per shift and
// day present in the table. Every other position produces Weapon weapon-flagged
// slots followed by NoWeapon unflagged slots, each indexed from 0.
//
// Output order is deterministic: shift, position name, day, weapon before
// no-weapon, index.
func Expand(hotel *model.Hotel, workers []model.Worker) ([]model.Slot, error) {
	if hotel == nil {
		return nil, fmt.Errorf("%w: hotel not found", ErrNoData)
	}
	if hotel.Requirements == nil {
		return nil, fmt.Errorf("%w: hotel %q has no requirement table", ErrNoData, hotel.Name)
	}
	if workers == nil {
		return nil, fmt.Errorf("%w: worker list for hotel %q unavailable", ErrNoData, hotel.Name)
	}
	if err := hotel.Requirements.Validate(); err != nil {
		return nil, fmt.Errorf("%w: hotel %q: %w", ErrNoData, hotel.Name, err)
	}

	var slots []model.Slot
	for _, shift := range model.ShiftPeriods {
		for _, position := range hotel.Requirements.Positions(shift) {
			days := hotel.Requirements[shift][position]
			for _, day := range model.Days {
				seats, ok := days[day]
				if !ok {
					continue
				}

				if position == model.SupervisorPosition {
					slots = append(slots, model.Slot{
						Name:       fmt.Sprintf("%s_%s_%s", shift, position, day),
						Day:        day,
						Shift:      shift,
						Position:   position,
						Supervisor: true,
					})
					continue
				}

				for i := 0; i < seats.Weapon; i++ {
					slots = append(slots, model.Slot{
						Name:           fmt.Sprintf("%s_%s_%s_weapon%d", shift, position, day, i),
						Day:            day,
						Shift:          shift,
						Position:       position,
						WeaponRequired: true,
						Index:          i,
					})
				}
				for i := 0; i < seats.NoWeapon; i++ {
					slots = append(slots, model.Slot{
						Name:     fmt.Sprintf("%s_%s_%s_noweapon%d", shift, position, day, i),
						Day:      day,
						Shift:    shift,
						Position: position,
						Index:    i,
					})
				}
			}
		}
	}

	return slots, nil
}
