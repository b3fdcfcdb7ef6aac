package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

func testVariable(index int, day model.Day, shift model.ShiftPeriod, domain ...model.WorkerID) Variable {
	name := string(shift) + "_Gate_" + string(day)
	return Variable{
		Slot:     model.Slot{Name: name, Day: day, Shift: shift, Position: "Gate"},
		Domain:   domain,
		Sentinel: model.Sentinel{Slot: name, Code: SentinelCode(index)},
	}
}

func fullResult() *model.ResultDocument {
	return &model.ResultDocument{Status: model.StatusFull, Notes: []model.Note{}}
}

func ruleNames(violations []Violation) []string {
	names := make([]string, 0, len(violations))
	for _, v := range violations {
		names = append(names, v.Rule)
	}
	return names
}

func TestVerify_ValidWeek(t *testing.T) {
	o := &Outcome{
		Result: fullResult(),
		Assignments: []Assignment{
			{Variable: testVariable(0, model.Monday, model.Morning, 1), Assignee: model.RealWorker{ID: 1}},
			{Variable: testVariable(1, model.Tuesday, model.Evening, 1), Assignee: model.RealWorker{ID: 1}},
		},
		Availability: map[model.WorkerID]int{1: 2},
		Policy:       DefaultPolicy(),
	}
	assert.Empty(t, Verify(o))
	assert.NoError(t, VerifyErr(o))
}

func TestVerify_OutOfDomain(t *testing.T) {
	o := &Outcome{
		Result: fullResult(),
		Assignments: []Assignment{
			{Variable: testVariable(0, model.Monday, model.Morning, 1), Assignee: model.RealWorker{ID: 2}},
		},
		Availability: map[model.WorkerID]int{2: 5},
		Policy:       DefaultPolicy(),
	}
	assert.Equal(t, []string{"Domain"}, ruleNames(Verify(o)))
}

func TestVerify_ForeignSentinel(t *testing.T) {
	a := testVariable(0, model.Monday, model.Morning)
	b := testVariable(1, model.Monday, model.Evening)
	o := &Outcome{
		Result: &model.ResultDocument{Status: model.StatusPartial, Notes: []model.Note{{}}},
		Assignments: []Assignment{
			{Variable: a, Assignee: b.Sentinel},
		},
		Policy: DefaultPolicy(),
	}
	assert.Equal(t, []string{"Domain"}, ruleNames(Verify(o)))
}

func TestVerify_TwoShiftsOneDay(t *testing.T) {
	o := &Outcome{
		Result: fullResult(),
		Assignments: []Assignment{
			{Variable: testVariable(0, model.Monday, model.Morning, 1), Assignee: model.RealWorker{ID: 1}},
			{Variable: testVariable(1, model.Monday, model.Evening, 1), Assignee: model.RealWorker{ID: 1}},
		},
		Availability: map[model.WorkerID]int{1: 5},
		Policy:       DefaultPolicy(),
	}
	assert.Equal(t, []string{"OneShiftPerDay"}, ruleNames(Verify(o)))
}

func TestVerify_SevenDays(t *testing.T) {
	o := &Outcome{Result: fullResult(), Availability: map[model.WorkerID]int{1: 7}, Policy: DefaultPolicy()}
	for i, day := range model.Days {
		o.Assignments = append(o.Assignments, Assignment{
			Variable: testVariable(i, day, model.Afternoon, 1),
			Assignee: model.RealWorker{ID: 1},
		})
	}
	assert.Equal(t, []string{"WeeklyRest"}, ruleNames(Verify(o)))

	o.Policy.MaxWorkingDays = 7
	assert.Empty(t, Verify(o))
}

func TestVerify_EveningThenMorning(t *testing.T) {
	o := &Outcome{
		Result: fullResult(),
		Assignments: []Assignment{
			{Variable: testVariable(0, model.Wednesday, model.Evening, 1), Assignee: model.RealWorker{ID: 1}},
			{Variable: testVariable(1, model.Thursday, model.Morning, 1), Assignee: model.RealWorker{ID: 1}},
		},
		Availability: map[model.WorkerID]int{1: 2},
		Policy:       DefaultPolicy(),
	}
	assert.Equal(t, []string{"NoEveningThenMorning"}, ruleNames(Verify(o)))
}

func TestVerify_CarryOver(t *testing.T) {
	o := &Outcome{
		Result: fullResult(),
		Assignments: []Assignment{
			{Variable: testVariable(0, model.Sunday, model.Morning, 1), Assignee: model.RealWorker{ID: 1}},
		},
		CarryOver:    []model.WorkerID{1},
		Availability: map[model.WorkerID]int{1: 1},
		Policy:       DefaultPolicy(),
	}
	assert.Equal(t, []string{"CarryOver"}, ruleNames(Verify(o)))
}

func TestVerify_OverAvailability(t *testing.T) {
	o := &Outcome{
		Result: fullResult(),
		Assignments: []Assignment{
			{Variable: testVariable(0, model.Monday, model.Morning, 1), Assignee: model.RealWorker{ID: 1}},
			{Variable: testVariable(1, model.Tuesday, model.Morning, 1), Assignee: model.RealWorker{ID: 1}},
		},
		Availability: map[model.WorkerID]int{1: 1},
		Policy:       DefaultPolicy(),
	}
	assert.Equal(t, []string{"AvailabilityCap"}, ruleNames(Verify(o)))
}

func TestVerify_StatusDisagreesWithSentinels(t *testing.T) {
	v := testVariable(0, model.Monday, model.Morning)
	o := &Outcome{
		Result: fullResult(),
		Assignments: []Assignment{
			{Variable: v, Assignee: v.Sentinel},
		},
		Policy: DefaultPolicy(),
	}
	// Both the note count and the status are wrong
	assert.Equal(t, []string{"Status", "Status"}, ruleNames(Verify(o)))
	assert.Error(t, VerifyErr(o))
}
