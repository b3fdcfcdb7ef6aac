package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorker_Valid(t *testing.T) {
	w, err := NewWorker(7, "Dana", true, false,
		DayAvailability{Day: Monday, Shifts: []ShiftPeriod{Morning, Evening}},
	)
	require.NoError(t, err)
	assert.Equal(t, WorkerID(7), w.ID)
	assert.Equal(t, TierManager, w.Tier())
}

func TestNewWorker_RejectsNegativeID(t *testing.T) {
	_, err := NewWorker(-1, "Ghost", false, false)
	assert.Error(t, err)
}

func TestNewWorker_RejectsMissingName(t *testing.T) {
	_, err := NewWorker(3, "", false, false)
	assert.Error(t, err)
}

func TestNewWorker_RejectsUnknownShift(t *testing.T) {
	_, err := NewWorker(3, "Noa", false, false,
		DayAvailability{Day: Monday, Shifts: []ShiftPeriod{"Night"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Night")
}

func TestNewWorker_RejectsUnknownDay(t *testing.T) {
	_, err := NewWorker(3, "Noa", false, false,
		DayAvailability{Day: "Funday", Shifts: []ShiftPeriod{Morning}},
	)
	assert.Error(t, err)
}

func TestWorker_Tier(t *testing.T) {
	assert.Equal(t, TierManager, Worker{IsShiftManager: true, IsWeaponCertified: true}.Tier())
	assert.Equal(t, TierWeaponCertified, Worker{IsWeaponCertified: true}.Tier())
	assert.Equal(t, TierUnqualified, Worker{}.Tier())
}

func TestWorker_AvailabilityCountIgnoresDuplicates(t *testing.T) {
	w := Worker{Availability: []DayAvailability{
		{Day: Monday, Shifts: []ShiftPeriod{Morning, Morning, Evening}},
		{Day: Monday, Shifts: []ShiftPeriod{Evening}},
		{Day: Tuesday, Shifts: []ShiftPeriod{Afternoon}},
	}}
	assert.Equal(t, 3, w.AvailabilityCount())
}

func TestRequirementTable_Validate(t *testing.T) {
	valid := RequirementTable{
		Morning: {"Lobby": {Monday: {Weapon: 1, NoWeapon: 2}}},
	}
	assert.NoError(t, valid.Validate())

	badShift := RequirementTable{"Night": {"Lobby": {Monday: {Weapon: 1}}}}
	assert.Error(t, badShift.Validate())

	badDay := RequirementTable{Morning: {"Lobby": {"Someday": {Weapon: 1}}}}
	assert.Error(t, badDay.Validate())

	negative := RequirementTable{Morning: {"Lobby": {Monday: {NoWeapon: -1}}}}
	assert.Error(t, negative.Validate())
}

func TestRequirementTable_PositionsSorted(t *testing.T) {
	table := RequirementTable{
		Morning: {"Pool": {}, "Entrance": {}, SupervisorPosition: {}},
	}
	assert.Equal(t, []string{"Entrance", "Pool", SupervisorPosition}, table.Positions(Morning))
	assert.Empty(t, table.Positions(Evening))
}

func TestScheduleByDay_SaturdayEveningWorkers(t *testing.T) {
	s := NewScheduleByDay()
	s[Saturday][Evening] = []ScheduleEntry{
		{Position: "Lobby", SlotName: "a", WorkerID: 5},
		{Position: "Lobby", SlotName: "b", WorkerID: -3, Unfilled: true},
		{Position: "Gate", SlotName: "c", WorkerID: -7}, // legacy placeholder
		{Position: "Gate", SlotName: "d", WorkerID: 2},
		{Position: "Pool", SlotName: "e", WorkerID: 5},
	}
	s[Saturday][Morning] = []ScheduleEntry{{Position: "Lobby", SlotName: "f", WorkerID: 9}}

	assert.Equal(t, []WorkerID{2, 5}, s.SaturdayEveningWorkers())
}

func TestNewScheduleByDay_HasEveryDayAndShift(t *testing.T) {
	s := NewScheduleByDay()
	assert.Len(t, s, 7)
	for _, day := range Days {
		assert.Len(t, s[day], 3)
		for _, shift := range ShiftPeriods {
			assert.NotNil(t, s[day][shift])
		}
	}
}

func TestParseDayAndShift(t *testing.T) {
	d, err := ParseDay("Friday")
	require.NoError(t, err)
	assert.Equal(t, 5, d.Index())

	_, err = ParseDay("friday")
	assert.Error(t, err)

	p, err := ParseShiftPeriod("Evening")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Index())
}

func TestResultDocument_EntryLabel(t *testing.T) {
	doc := &ResultDocument{WorkerNames: map[string]string{"3": "Avi"}}

	assert.Equal(t, "Avi", doc.EntryLabel(ScheduleEntry{WorkerID: 3}))
	assert.Equal(t, "#9", doc.EntryLabel(ScheduleEntry{WorkerID: 9}))
	assert.Equal(t, UnfilledLabel, doc.EntryLabel(ScheduleEntry{WorkerID: -2, Unfilled: true}))
	assert.Equal(t, UnfilledLabel, doc.EntryLabel(ScheduleEntry{WorkerID: -1}))
}
