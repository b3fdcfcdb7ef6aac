package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// WorkerID identifies a real worker. Real ids are never negative; the negative
// range is reserved for unfilled-seat placeholders.
type WorkerID int64

// Tier is a worker's qualification level. Higher tiers can fill every role of
// the lower ones.
type Tier int

const (
	TierUnqualified Tier = iota
	TierWeaponCertified
	TierManager
)

func (t Tier) String() string {
	switch t {
	case TierManager:
		return "shift_manager"
	case TierWeaponCertified:
		return "with_weapon"
	default:
		return "without_weapon"
	}
}

// DayAvailability is a worker's declared availability for one day
type DayAvailability struct {
	Day    Day           `json:"day" bson:"day" validate:"required"`
	Shifts []ShiftPeriod `json:"shifts" bson:"shifts"`
}

// Worker is a guard who can be placed on shift slots. Workers are read-only
// inputs to scheduling.
type Worker struct {
	ID                WorkerID          `json:"id" bson:"_id" validate:"min=0"`
	Name              string            `json:"name" bson:"name" validate:"required"`
	IsShiftManager    bool              `json:"is_shift_manager" bson:"ShiftManager"`
	IsWeaponCertified bool              `json:"is_weapon_certified" bson:"WeaponCertified"`
	Workplace         string            `json:"workplace,omitempty" bson:"Workplace,omitempty"`
	Availability      []DayAvailability `json:"selected_days" bson:"selectedDays" validate:"dive"`
}

var validate = validator.New()

// NewWorker builds a validated worker
func NewWorker(id WorkerID, name string, manager, weapon bool, availability ...DayAvailability) (Worker, error) {
	w := Worker{
		ID:                id,
		Name:              name,
		IsShiftManager:    manager,
		IsWeaponCertified: weapon,
		Availability:      availability,
	}
	if err := w.Validate(); err != nil {
		return Worker{}, err
	}
	return w, nil
}

// Validate checks required fields and that every declared day and shift is known
func (w Worker) Validate() error {
	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("invalid worker %d: %w", w.ID, err)
	}
	for _, a := range w.Availability {
		if !a.Day.IsValid() {
			return fmt.Errorf("invalid worker %d: unknown day %q", w.ID, a.Day)
		}
		for _, s := range a.Shifts {
			if !s.IsValid() {
				return fmt.Errorf("invalid worker %d: unknown shift %q on %s", w.ID, s, a.Day)
			}
		}
	}
	return nil
}

// Tier returns the single qualification tier of the worker
func (w Worker) Tier() Tier {
	switch {
	case w.IsShiftManager:
		return TierManager
	case w.IsWeaponCertified:
		return TierWeaponCertified
	default:
		return TierUnqualified
	}
}

// AvailabilityCount is the number of distinct (day, shift) pairs the worker offered
func (w Worker) AvailabilityCount() int {
	seen := make(map[Day]map[ShiftPeriod]bool)
	count := 0
	for _, a := range w.Availability {
		if seen[a.Day] == nil {
			seen[a.Day] = make(map[ShiftPeriod]bool)
		}
		for _, s := range a.Shifts {
			if !seen[a.Day][s] {
				seen[a.Day][s] = true
				count++
			}
		}
	}
	return count
}

// Manager is the person a scheduling run is performed for; it resolves the hotel
type Manager struct {
	ID        WorkerID `json:"id" bson:"_id"`
	Name      string   `json:"name" bson:"name"`
	Workplace string   `json:"workplace" bson:"Workplace"`
	Email     string   `json:"email,omitempty" bson:"email,omitempty"`
}
