package model

import "fmt"

// DateFormat is the layout of week start dates in documents and requests
const DateFormat = "2006-01-02"

// Day is a day of the scheduling week. Weeks start on Sunday.
type Day string

const (
	Sunday    Day = "Sunday"
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
)

// Days lists the week in order
var Days = []Day{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Index returns the position of the day in the week, or -1 for an unknown day
func (d Day) Index() int {
	for i, day := range Days {
		if day == d {
			return i
		}
	}
	return -1
}

func (d Day) IsValid() bool {
	return d.Index() >= 0
}

// ParseDay converts a day name into a Day
func ParseDay(s string) (Day, error) {
	d := Day(s)
	if !d.IsValid() {
		return "", fmt.Errorf("unknown day %q", s)
	}
	return d, nil
}

// ShiftPeriod is one of the three daily shifts
type ShiftPeriod string

const (
	Morning   ShiftPeriod = "Morning"
	Afternoon ShiftPeriod = "Afternoon"
	Evening   ShiftPeriod = "Evening"
)

// ShiftPeriods lists the shifts of a day in order
var ShiftPeriods = []ShiftPeriod{Morning, Afternoon, Evening}

// Index returns the position of the shift in the day, or -1 for an unknown shift
func (s ShiftPeriod) Index() int {
	for i, shift := range ShiftPeriods {
		if shift == s {
			return i
		}
	}
	return -1
}

func (s ShiftPeriod) IsValid() bool {
	return s.Index() >= 0
}

// ParseShiftPeriod converts a shift name into a ShiftPeriod
func ParseShiftPeriod(s string) (ShiftPeriod, error) {
	p := ShiftPeriod(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown shift period %q", s)
	}
	return p, nil
}
