package db

import "time"

// Shift occurrence statuses
const (
	OccurrencePlanned   = "planned"
	OccurrencePublished = "published"
	OccurrenceCancelled = "cancelled"
)

// Engineer is a roster row joined with skills, YTD counters and approved
// leave. The planning core treats it as read-only; YTD counters advance
// only inside the commit transaction.
type Engineer struct {
	ID                 string
	Name               string
	Email              string
	Active             bool
	Skills             []string
	YTDWaakdienstWeeks int
	YTDIncidentWeeks   int
	TotalHours         float64
	Leave              []LeaveWindow
}

// LeaveWindow is an approved leave period, inclusive on both ends
type LeaveWindow struct {
	Start time.Time
	End   time.Time
}

// ShiftOccurrence is a concrete time-boxed slot to be staffed
type ShiftOccurrence struct {
	ID            string
	TeamID        string
	Category      string // waakdienst | incident
	Date          time.Time
	Start         time.Time
	End           time.Time
	RequiredStaff int
	Status        string
}

// Assignment links one engineer to one shift occurrence
type Assignment struct {
	ID           string
	OccurrenceID string
	EngineerID   string
	TeamID       string
	Category     string
	Role         string // primary | standby
	Status       string // proposed | confirmed | declined | completed | cancelled
	Date         time.Time
	Start        time.Time
	End          time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlanningRun records one committed orchestration run for the audit trail
type PlanningRun struct {
	ID              string
	TeamID          string
	StartDate       time.Time
	Weeks           int
	Algorithm       string
	Mode            string
	TotalWeeks      int
	AssignedWeeks   int
	UnassignedWeeks int
	CoveragePct     float64
	Success         bool
	Errors          []string
	CreatedAt       time.Time
}
