package model

import (
	"fmt"
	"sort"
)

// SupervisorPosition is the position that needs exactly one manager per shift
const SupervisorPosition = "Shift Supervisor"

// SeatCounts is the number of seats a position needs on one day and shift
type SeatCounts struct {
	Weapon   int `json:"weapon" bson:"weapon" yaml:"weapon"`
	NoWeapon int `json:"noWeapon" bson:"noWeapon" yaml:"noWeapon"`
}

// RequirementTable is a hotel's weekly demand: shift -> position -> day -> seats
type RequirementTable map[ShiftPeriod]map[string]map[Day]SeatCounts

// Validate rejects unknown shift or day keys and negative counts
func (t RequirementTable) Validate() error {
	for shift, positions := range t {
		if !shift.IsValid() {
			return fmt.Errorf("requirement table: unknown shift %q", shift)
		}
		for position, days := range positions {
			if position == "" {
				return fmt.Errorf("requirement table: empty position name under %s", shift)
			}
			for day, seats := range days {
				if !day.IsValid() {
					return fmt.Errorf("requirement table: unknown day %q for %s/%s", day, shift, position)
				}
				if seats.Weapon < 0 || seats.NoWeapon < 0 {
					return fmt.Errorf("requirement table: negative seat count for %s/%s/%s", shift, position, day)
				}
			}
		}
	}
	return nil
}

// Positions returns the position names of a shift in sorted order
func (t RequirementTable) Positions(shift ShiftPeriod) []string {
	names := make([]string, 0, len(t[shift]))
	for name := range t[shift] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hotel is a workplace with its weekly requirement table
type Hotel struct {
	Name         string           `json:"hotel_name" bson:"hotelName"`
	Requirements RequirementTable `json:"schedule" bson:"schedule"`
}
