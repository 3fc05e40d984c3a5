package enums

import "fmt"

// TimeEntrySource distinguishes clock-driven entries from manual backfills.
type TimeEntrySource string

const (
	TimeEntrySourceClock  TimeEntrySource = "clock"
	TimeEntrySourceManual TimeEntrySource = "manual"
)

// String implements fmt.Stringer.
func (s TimeEntrySource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TimeEntrySource.
func (s TimeEntrySource) IsValid() bool {
	return s == TimeEntrySourceClock || s == TimeEntrySourceManual
}

// TimeEntryState is the derived lifecycle state of a time entry. It is never
// stored; it is computed from the entry's markers in exactly one place so an
// entry cannot report being on break and paused at once.
type TimeEntryState string

const (
	TimeEntryStateActive    TimeEntryState = "active"
	TimeEntryStateOnBreak   TimeEntryState = "on_break"
	TimeEntryStatePaused    TimeEntryState = "paused"
	TimeEntryStateCompleted TimeEntryState = "completed"
	TimeEntryStateAbandoned TimeEntryState = "abandoned"
)

// String implements fmt.Stringer.
func (s TimeEntryState) String() string {
	return string(s)
}

// IsOpen reports whether the state describes a still-running entry.
func (s TimeEntryState) IsOpen() bool {
	switch s {
	case TimeEntryStateActive, TimeEntryStateOnBreak, TimeEntryStatePaused:
		return true
	}
	return false
}

// ParseTimeEntrySource converts raw input into a TimeEntrySource.
func ParseTimeEntrySource(value string) (TimeEntrySource, error) {
	switch TimeEntrySource(value) {
	case TimeEntrySourceClock:
		return TimeEntrySourceClock, nil
	case TimeEntrySourceManual:
		return TimeEntrySourceManual, nil
	}
	return "", fmt.Errorf("invalid time entry source %q", value)
}
