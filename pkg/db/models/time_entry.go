package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/pkg/enums"
)

// TimeEntry is one clock session or manual entry for an employee on a job.
//
// At most one entry per (company, employee) may be active at a time; the
// uq_time_entries_active partial unique index makes the insert the atomic
// "insert iff no active entry" check, so two racing clock-ins cannot both
// commit.
type TimeEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`

	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index"`
	JobID      uuid.UUID `gorm:"column:job_id;type:uuid;not null;index"`

	// Date is the calendar day derived from StartTS, used for day-bucketed
	// queries and the monthly billing window.
	Date    time.Time  `gorm:"column:date;not null;index"`
	StartTS time.Time  `gorm:"column:start_ts;not null"`
	EndTS   *time.Time `gorm:"column:end_ts"`

	BreakMinutes   int        `gorm:"column:break_minutes;not null;default:0"`
	BreakStartedAt *time.Time `gorm:"column:break_started_at"`

	PausedMinutes   int        `gorm:"column:paused_minutes;not null;default:0"`
	PausedStartedAt *time.Time `gorm:"column:paused_started_at"`
	PauseLastReason *string    `gorm:"column:pause_last_reason;type:text"`
	PlannedResumeAt *time.Time `gorm:"column:planned_resume_at"`

	AbandonedReason *string `gorm:"column:abandoned_reason;type:text"`

	IsActive bool `gorm:"column:is_active;not null;default:false"`

	// DurationMinutes is frozen on close; open entries compute on read.
	DurationMinutes *int `gorm:"column:duration_minutes"`

	Source enums.TimeEntrySource `gorm:"column:source;type:text;not null;default:'clock'"`
	Note   *string               `gorm:"column:note;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// State derives the lifecycle state from the entry's markers. This is the
// single place the nullable-field combination is interpreted.
func (t TimeEntry) State() enums.TimeEntryState {
	if t.EndTS != nil {
		if t.AbandonedReason != nil {
			return enums.TimeEntryStateAbandoned
		}
		return enums.TimeEntryStateCompleted
	}
	if t.PausedStartedAt != nil {
		return enums.TimeEntryStatePaused
	}
	if t.BreakStartedAt != nil {
		return enums.TimeEntryStateOnBreak
	}
	return enums.TimeEntryStateActive
}

// DurationAt returns billed minutes as of now: the frozen value when one was
// stored at close, otherwise the live computation: elapsed minutes minus
// committed break and pause minutes minus any still-open break or pause span.
func (t TimeEntry) DurationAt(now time.Time) int {
	if t.DurationMinutes != nil {
		return *t.DurationMinutes
	}
	end := now
	if t.EndTS != nil {
		end = *t.EndTS
	}
	breakTotal := t.BreakMinutes
	if t.EndTS == nil && t.BreakStartedAt != nil {
		breakTotal += MinutesBetween(*t.BreakStartedAt, now)
	}
	pausedTotal := t.PausedMinutes
	if t.EndTS == nil && t.PausedStartedAt != nil {
		pausedTotal += MinutesBetween(*t.PausedStartedAt, now)
	}
	duration := MinutesBetween(t.StartTS, end) - breakTotal - pausedTotal
	if duration < 0 {
		return 0
	}
	return duration
}

// MinutesBetween returns whole elapsed minutes between two instants, floored
// to the minute and clamped at zero.
func MinutesBetween(from, to time.Time) int {
	secs := int(to.Sub(from) / time.Second)
	if secs <= 0 {
		return 0
	}
	return secs / 60
}

// OnBreak reports whether a break span is currently open.
func (t TimeEntry) OnBreak() bool {
	return t.BreakStartedAt != nil
}

// OnPause reports whether a pause span is currently open.
func (t TimeEntry) OnPause() bool {
	return t.PausedStartedAt != nil
}
