package model

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Slot is a demand for exactly one worker at a day, shift, position and
// weapon requirement. Slots are rebuilt on every run.
type Slot struct {
	Name           string
	Day            Day
	Shift          ShiftPeriod
	Position       string
	WeaponRequired bool
	Supervisor     bool
	Index          int
}

// Label is the human readable shift label used in audit notes, e.g. "Monday Morning"
func (s Slot) Label() string {
	return fmt.Sprintf("%s %s", s.Day, s.Shift)
}

// Assignee is the solved value of a slot: either a real worker or the slot's
// own unfilled placeholder.
type Assignee interface {
	IsSentinel() bool
}

// RealWorker is an assignment to an actual worker
type RealWorker struct {
	ID WorkerID
}

func (RealWorker) IsSentinel() bool { return false }

// Sentinel marks a slot left unfilled. Code is the out-of-band placeholder id
// persisted in place of a worker id.
type Sentinel struct {
	Slot string
	Code int64
}

func (Sentinel) IsSentinel() bool { return true }

// Status is the overall classification of a solved week
type Status string

const (
	StatusFull    Status = "full"
	StatusPartial Status = "partial"
)

// WeekMarker distinguishes the live result of a hotel from superseded ones
type WeekMarker string

const (
	WeekCurrent  WeekMarker = "current"
	WeekPrevious WeekMarker = "previous"
)

// ScheduleEntry is one solved slot in the persisted schedule
type ScheduleEntry struct {
	Position string `json:"position" bson:"position"`
	SlotName string `json:"slot_name" bson:"var_name"`
	WorkerID int64  `json:"worker_id" bson:"worker_id"`
	Unfilled bool   `json:"unfilled" bson:"unfilled"`
}

// Real reports whether the entry holds a real worker. Documents written before
// the unfilled flag existed mark placeholders with negative ids.
func (e ScheduleEntry) Real() bool {
	return !e.Unfilled && e.WorkerID >= 0
}

// ScheduleByDay is the materialized schedule: day -> shift -> ordered entries
type ScheduleByDay map[Day]map[ShiftPeriod][]ScheduleEntry

// NewScheduleByDay returns a schedule with an empty list for every day and shift
func NewScheduleByDay() ScheduleByDay {
	s := make(ScheduleByDay, len(Days))
	for _, day := range Days {
		s[day] = make(map[ShiftPeriod][]ScheduleEntry, len(ShiftPeriods))
		for _, shift := range ShiftPeriods {
			s[day][shift] = []ScheduleEntry{}
		}
	}
	return s
}

// SaturdayEveningWorkers returns the real workers on the Saturday evening slots, sorted
func (s ScheduleByDay) SaturdayEveningWorkers() []WorkerID {
	seen := make(map[WorkerID]bool)
	var ids []WorkerID
	for _, entry := range s[Saturday][Evening] {
		if !entry.Real() {
			continue
		}
		id := WorkerID(entry.WorkerID)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Note records a seat the solver could not fill
type Note struct {
	Shift    string `json:"shift" bson:"shift"`
	Position string `json:"position" bson:"position"`
	Weapon   bool   `json:"weapon" bson:"weapon"`
}

// ResultDocument is the persisted outcome of one scheduling run
type ResultDocument struct {
	ID                    string            `json:"id" bson:"runId"`
	HotelName             string            `json:"hotel_name" bson:"hotelName"`
	GeneratedAt           time.Time         `json:"generated_at" bson:"generatedAt"`
	Schedule              ScheduleByDay     `json:"schedule" bson:"schedule"`
	Status                Status            `json:"status" bson:"status"`
	Notes                 []Note            `json:"notes" bson:"notes"`
	WeekMarker            WeekMarker        `json:"week_marker" bson:"Week"`
	RelevantWeekStartDate string            `json:"relevant_week_start_date" bson:"relevantWeekStartDate"`
	WorkerNames           map[string]string `json:"id_to_name,omitempty" bson:"idToName,omitempty"`
}

// UnfilledLabel is shown in place of a worker name for unfilled slots
const UnfilledLabel = "UNFILLED"

// EntryLabel returns the display name of the worker on an entry, falling back
// to the id when the document has no name for it
func (d *ResultDocument) EntryLabel(e ScheduleEntry) string {
	if !e.Real() {
		return UnfilledLabel
	}
	id := strconv.FormatInt(e.WorkerID, 10)
	if name, ok := d.WorkerNames[id]; ok && name != "" {
		return name
	}
	return "#" + id
}
