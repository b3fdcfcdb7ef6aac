package scheduler

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// Assignment is the solved value of one slot
type Assignment struct {
	Variable Variable
	Assignee model.Assignee
}

// Materialize reads the solved values back into a result document. Every slot
// solved to its own sentinel becomes an audit note; supervisor slots are
// noted as weapon seats.
func Materialize(vars []Variable, values []int64, hotel *model.Hotel, workers []model.Worker, weekStart, generatedAt time.Time) ([]Assignment, *model.ResultDocument) {
	schedule := model.NewScheduleByDay()
	notes := []model.Note{}
	assignments := make([]Assignment, len(vars))

	for i, v := range vars {
		value := values[i]
		entry := model.ScheduleEntry{
			Position: v.Slot.Position,
			SlotName: v.Slot.Name,
			WorkerID: value,
		}

		if value == v.Sentinel.Code {
			assignments[i] = Assignment{Variable: v, Assignee: v.Sentinel}
			entry.Unfilled = true
			notes = append(notes, model.Note{
				Shift:    v.Slot.Label(),
				Position: v.Slot.Position,
				Weapon:   v.Slot.WeaponRequired || v.Slot.Supervisor,
			})
		} else {
			assignments[i] = Assignment{Variable: v, Assignee: model.RealWorker{ID: model.WorkerID(value)}}
		}

		schedule[v.Slot.Day][v.Slot.Shift] = append(schedule[v.Slot.Day][v.Slot.Shift], entry)
	}

	status := model.StatusFull
	if len(notes) > 0 {
		status = model.StatusPartial
	}

	names := make(map[string]string, len(workers))
	for _, w := range workers {
		if w.ID >= 0 {
			names[strconv.FormatInt(int64(w.ID), 10)] = w.Name
		}
	}

	return assignments, &model.ResultDocument{
		ID:                    uuid.New().String(),
		HotelName:             hotel.Name,
		GeneratedAt:           generatedAt,
		Schedule:              schedule,
		Status:                status,
		Notes:                 notes,
		WeekMarker:            model.WeekCurrent,
		RelevantWeekStartDate: weekStart.Format(model.DateFormat),
		WorkerNames:           names,
	}
}
