package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/csp"
	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/slots"
)

var (
	testWeekStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	testNow       = time.Date(2025, 5, 28, 9, 30, 0, 0, time.UTC)
)

func newTestScheduler(policy Policy) *Scheduler {
	return New(Config{
		Policy:    policy,
		TimeLimit: 2 * time.Second,
		Now:       func() time.Time { return testNow },
	}, zap.NewNop())
}

// everyDay returns availability for the given shifts on all seven days
func everyDay(shifts ...model.ShiftPeriod) []model.DayAvailability {
	out := make([]model.DayAvailability, 0, len(model.Days))
	for _, day := range model.Days {
		out = append(out, model.DayAvailability{Day: day, Shifts: shifts})
	}
	return out
}

func allShifts() []model.DayAvailability {
	return everyDay(model.Morning, model.Afternoon, model.Evening)
}

// dailySeats requires the same seat counts for a position on every day
func dailySeats(seats model.SeatCounts) map[model.Day]model.SeatCounts {
	out := make(map[model.Day]model.SeatCounts, len(model.Days))
	for _, day := range model.Days {
		out[day] = seats
	}
	return out
}

func placedDays(o *Outcome, worker model.WorkerID) map[model.Day]int {
	days := make(map[model.Day]int)
	for _, a := range o.Assignments {
		if rw, ok := a.Assignee.(model.RealWorker); ok && rw.ID == worker {
			days[a.Variable.Slot.Day]++
		}
	}
	return days
}

func TestRun_SupervisorEveryDay_WeeklyRestLeavesOneGap(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Dan Panorama",
		Requirements: model.RequirementTable{
			model.Morning: {model.SupervisorPosition: dailySeats(model.SeatCounts{})},
		},
	}
	workers := []model.Worker{
		{ID: 1, Name: "Avi", IsShiftManager: true, Availability: allShifts()},
	}

	outcome, err := newTestScheduler(DefaultPolicy()).Run(context.Background(), Input{
		Hotel: hotel, Workers: workers, WeekStart: testWeekStart,
	})
	require.NoError(t, err)
	require.Empty(t, Verify(outcome))

	// Six working days is the limit, so one supervisor seat stays open
	assert.Equal(t, csp.StatusOptimal, outcome.SolverStatus)
	assert.Len(t, placedDays(outcome, 1), 6)
	assert.Equal(t, model.StatusPartial, outcome.Result.Status)
	require.Len(t, outcome.Result.Notes, 1)
	assert.Equal(t, model.SupervisorPosition, outcome.Result.Notes[0].Position)
	assert.True(t, outcome.Result.Notes[0].Weapon)
}

func TestRun_SupervisorEveryDay_FullWhenRestRelaxed(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Dan Panorama",
		Requirements: model.RequirementTable{
			model.Morning: {model.SupervisorPosition: dailySeats(model.SeatCounts{})},
		},
	}
	workers := []model.Worker{
		{ID: 1, Name: "Avi", IsShiftManager: true, Availability: allShifts()},
	}

	policy := DefaultPolicy()
	policy.MaxWorkingDays = 7

	outcome, err := newTestScheduler(policy).Run(context.Background(), Input{
		Hotel: hotel, Workers: workers, WeekStart: testWeekStart,
	})
	require.NoError(t, err)
	require.Empty(t, Verify(outcome))

	assert.Equal(t, model.StatusFull, outcome.Result.Status)
	assert.Empty(t, outcome.Result.Notes)
	for _, day := range model.Days {
		entries := outcome.Result.Schedule[day][model.Morning]
		require.Len(t, entries, 1, day)
		assert.Equal(t, int64(1), entries[0].WorkerID, day)
	}
}

func TestRun_WeaponShortage_OneSentinel(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Herods",
		Requirements: model.RequirementTable{
			model.Morning: {"Gate": {model.Monday: {Weapon: 2}}},
		},
	}
	workers := []model.Worker{
		{ID: 2, Name: "Dana", IsWeaponCertified: true, Availability: []model.DayAvailability{
			{Day: model.Monday, Shifts: []model.ShiftPeriod{model.Morning}},
		}},
		// Unqualified workers cannot take weapon seats
		{ID: 3, Name: "Eli", Availability: []model.DayAvailability{
			{Day: model.Monday, Shifts: []model.ShiftPeriod{model.Morning}},
		}},
	}

	outcome, err := newTestScheduler(DefaultPolicy()).Run(context.Background(), Input{
		Hotel: hotel, Workers: workers, WeekStart: testWeekStart,
	})
	require.NoError(t, err)
	require.Empty(t, Verify(outcome))

	assert.Equal(t, model.StatusPartial, outcome.Result.Status)
	assert.Equal(t, 1, outcome.Unfilled())
	// One sentinel and no fairness excess
	assert.Equal(t, csp.StatusOptimal, outcome.SolverStatus)
	assert.Equal(t, int64(100), outcome.Objective)
	require.Len(t, outcome.Result.Notes, 1)
	assert.Equal(t, model.Note{Shift: "Monday Morning", Position: "Gate", Weapon: true}, outcome.Result.Notes[0])

	entries := outcome.Result.Schedule[model.Monday][model.Morning]
	require.Len(t, entries, 2)
	filled, unfilled := 0, 0
	for _, e := range entries {
		if e.Real() {
			filled++
			assert.Equal(t, int64(2), e.WorkerID)
		} else {
			unfilled++
			assert.Less(t, e.WorkerID, int64(0))
		}
	}
	assert.Equal(t, 1, filled)
	assert.Equal(t, 1, unfilled)
}

func TestRun_AlwaysAvailableWorkerGetsARestDay(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Isrotel",
		Requirements: model.RequirementTable{
			model.Morning: {"Lobby": dailySeats(model.SeatCounts{NoWeapon: 1})},
		},
	}
	workers := []model.Worker{
		{ID: 3, Name: "Moshe", Availability: everyDay(model.Morning)},
	}

	outcome, err := newTestScheduler(DefaultPolicy()).Run(context.Background(), Input{
		Hotel: hotel, Workers: workers, WeekStart: testWeekStart,
	})
	require.NoError(t, err)
	require.Empty(t, Verify(outcome))

	assert.Len(t, placedDays(outcome, 3), 6)
	assert.Equal(t, 1, outcome.Unfilled())
}

func TestRun_CarryOverBarsSundayMorning(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Leonardo",
		Requirements: model.RequirementTable{
			model.Morning: {"Gate": {model.Sunday: {NoWeapon: 1}, model.Monday: {NoWeapon: 1}}},
		},
	}
	workers := []model.Worker{
		{ID: 5, Name: "Rina", Availability: []model.DayAvailability{
			{Day: model.Sunday, Shifts: []model.ShiftPeriod{model.Morning}},
			{Day: model.Monday, Shifts: []model.ShiftPeriod{model.Morning}},
		}},
	}

	previous := model.NewScheduleByDay()
	previous[model.Saturday][model.Evening] = []model.ScheduleEntry{
		{Position: "Gate", SlotName: "Evening_Gate_Saturday_noweapon0", WorkerID: 5},
	}

	outcome, err := newTestScheduler(DefaultPolicy()).Run(context.Background(), Input{
		Hotel: hotel, Workers: workers, PreviousSchedule: previous, WeekStart: testWeekStart,
	})
	require.NoError(t, err)
	require.Empty(t, Verify(outcome))

	assert.Equal(t, []model.WorkerID{5}, outcome.CarryOver)

	sunday := outcome.Result.Schedule[model.Sunday][model.Morning]
	require.Len(t, sunday, 1)
	assert.True(t, sunday[0].Unfilled)

	monday := outcome.Result.Schedule[model.Monday][model.Morning]
	require.Len(t, monday, 1)
	assert.Equal(t, int64(5), monday[0].WorkerID)
}

func TestRun_UnfilledPreviousSlotsBarNobody(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Leonardo",
		Requirements: model.RequirementTable{
			model.Morning: {"Gate": {model.Sunday: {NoWeapon: 1}}},
		},
	}
	workers := []model.Worker{
		{ID: 5, Name: "Rina", Availability: []model.DayAvailability{
			{Day: model.Sunday, Shifts: []model.ShiftPeriod{model.Morning}},
		}},
	}

	previous := model.NewScheduleByDay()
	previous[model.Saturday][model.Evening] = []model.ScheduleEntry{
		{Position: "Gate", SlotName: "x", WorkerID: -5, Unfilled: true},
	}

	outcome, err := newTestScheduler(DefaultPolicy()).Run(context.Background(), Input{
		Hotel: hotel, Workers: workers, PreviousSchedule: previous, WeekStart: testWeekStart,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusFull, outcome.Result.Status)
}

func TestRun_NoEveningThenMorning(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Carlton",
		Requirements: model.RequirementTable{
			model.Evening: {"Gate": {model.Monday: {NoWeapon: 1}}},
			model.Morning: {"Gate": {model.Tuesday: {NoWeapon: 1}}},
		},
	}
	workers := []model.Worker{
		{ID: 8, Name: "Yossi", Availability: []model.DayAvailability{
			{Day: model.Monday, Shifts: []model.ShiftPeriod{model.Evening}},
			{Day: model.Tuesday, Shifts: []model.ShiftPeriod{model.Morning}},
		}},
	}

	outcome, err := newTestScheduler(DefaultPolicy()).Run(context.Background(), Input{
		Hotel: hotel, Workers: workers, WeekStart: testWeekStart,
	})
	require.NoError(t, err)
	require.Empty(t, Verify(outcome))
	assert.Equal(t, 1, outcome.Unfilled())
}

func TestRun_FairnessSpreadsShifts(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Hilton",
		Requirements: model.RequirementTable{
			model.Morning: {"Pool": dailySeats(model.SeatCounts{NoWeapon: 1})},
		},
	}
	workers := []model.Worker{
		{ID: 1, Name: "Tal", Availability: everyDay(model.Morning)},
		{ID: 2, Name: "Noa", Availability: everyDay(model.Morning)},
	}

	outcome, err := newTestScheduler(DefaultPolicy()).Run(context.Background(), Input{
		Hotel: hotel, Workers: workers, WeekStart: testWeekStart,
	})
	require.NoError(t, err)
	require.Empty(t, Verify(outcome))

	assert.Equal(t, model.StatusFull, outcome.Result.Status)
	a, b := len(placedDays(outcome, 1)), len(placedDays(outcome, 2))
	assert.Equal(t, 7, a+b)
	assert.LessOrEqual(t, a-b, 3)
	assert.LessOrEqual(t, b-a, 3)
	assert.Equal(t, int64(0), outcome.Objective)
}

func TestRun_NobodyEligible_AllSentinels(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Empty",
		Requirements: model.RequirementTable{
			model.Afternoon: {
				"Gate":                   {model.Friday: {Weapon: 1, NoWeapon: 2}},
				model.SupervisorPosition: {model.Friday: {}},
			},
		},
	}

	outcome, err := newTestScheduler(DefaultPolicy()).Run(context.Background(), Input{
		Hotel: hotel, Workers: []model.Worker{}, WeekStart: testWeekStart,
	})
	require.NoError(t, err)
	require.Empty(t, Verify(outcome))

	assert.True(t, outcome.SolverStatus.HasSolution())
	assert.Equal(t, 4, outcome.Unfilled())
	assert.Len(t, outcome.Result.Notes, 4)
	assert.Equal(t, int64(400), outcome.Objective)
}

func TestRun_ResultDocumentFields(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Dan Eilat",
		Requirements: model.RequirementTable{
			model.Morning: {"Gate": {model.Sunday: {NoWeapon: 1}}},
		},
	}
	workers := []model.Worker{
		{ID: 4, Name: "Shira", Availability: []model.DayAvailability{
			{Day: model.Sunday, Shifts: []model.ShiftPeriod{model.Morning}},
		}},
		{ID: 9, Name: "Omer"},
	}

	outcome, err := newTestScheduler(DefaultPolicy()).Run(context.Background(), Input{
		Hotel: hotel, Workers: workers, WeekStart: testWeekStart,
	})
	require.NoError(t, err)

	doc := outcome.Result
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Dan Eilat", doc.HotelName)
	assert.Equal(t, testNow, doc.GeneratedAt)
	assert.Equal(t, "2025-06-01", doc.RelevantWeekStartDate)
	assert.Equal(t, model.WeekCurrent, doc.WeekMarker)
	assert.Equal(t, map[string]string{"4": "Shira", "9": "Omer"}, doc.WorkerNames)

	// Every day and shift is present even when empty
	for _, day := range model.Days {
		for _, shift := range model.ShiftPeriods {
			assert.NotNil(t, doc.Schedule[day][shift])
		}
	}
}

func TestRun_MissingDataAbortsBeforeSolving(t *testing.T) {
	s := newTestScheduler(DefaultPolicy())

	_, err := s.Run(context.Background(), Input{Workers: []model.Worker{}})
	assert.True(t, errors.Is(err, slots.ErrNoData))

	_, err = s.Run(context.Background(), Input{Hotel: &model.Hotel{Name: "NoTable"}, Workers: []model.Worker{}})
	assert.True(t, errors.Is(err, slots.ErrNoData))

	_, err = s.Run(context.Background(), Input{
		Hotel: &model.Hotel{Name: "Bad", Requirements: model.RequirementTable{}},
		Workers: []model.Worker{
			{ID: 1, Name: "Odd", Availability: []model.DayAvailability{{Day: "Funday", Shifts: []model.ShiftPeriod{model.Morning}}}},
		},
	})
	assert.True(t, errors.Is(err, slots.ErrNoData))
}

func TestRun_ReservedIDsAreNeverScheduled(t *testing.T) {
	hotel := &model.Hotel{
		Name: "Herods",
		Requirements: model.RequirementTable{
			model.Morning: {"Gate": {model.Monday: {NoWeapon: 1}}},
		},
	}
	workers := []model.Worker{
		{ID: -1, Name: "Collides", Availability: allShifts()},
	}

	outcome, err := newTestScheduler(DefaultPolicy()).Run(context.Background(), Input{
		Hotel: hotel, Workers: workers, WeekStart: testWeekStart,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Unfilled())
	assert.Empty(t, outcome.Availability)
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{}, nil)
	assert.Equal(t, DefaultPolicy(), s.Policy())
	assert.Equal(t, DefaultTimeLimit, s.timeLimit)
	assert.NotNil(t, s.now)
	assert.NotNil(t, s.logger)
}

func TestEncode_InvalidPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxWorkingDays = 8
	_, err := Encode(nil, nil, nil, policy)
	assert.Error(t, err)
}
