package planner

import (
	"time"
)

// Assignment roles
const (
	RolePrimary = "primary"
	RoleStandby = "standby"
)

// Assignment statuses carried on persisted history rows
const (
	StatusProposed  = "proposed"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// RotationType identifies one of the two recurring rotations
type RotationType string

const (
	// RotationWaakdienst is the weekly on-call rotation covering all
	// non-business hours, Wednesday to Wednesday
	RotationWaakdienst RotationType = "waakdienst"

	// RotationIncident is the Monday-Friday business-hours rotation
	RotationIncident RotationType = "incident"
)

// AnnualCap returns the maximum number of weeks an engineer may work
// this rotation per year
func (rt RotationType) AnnualCap() int {
	if rt == RotationWaakdienst {
		return 8
	}
	return 12
}

// GapDays returns the minimum number of days between two assignments of
// this rotation for the same engineer (assignments within the same week
// are exempt)
func (rt RotationType) GapDays() int {
	if rt == RotationWaakdienst {
		return 14
	}
	return 7
}

// Anchor returns the weekday this rotation's weeks start on
func (rt RotationType) Anchor() time.Weekday {
	if rt == RotationWaakdienst {
		return WaakdienstAnchor
	}
	return IncidentAnchor
}

// SkillTag returns the skill an engineer must hold to be qualified for
// this rotation
func (rt RotationType) SkillTag() string {
	return string(rt)
}

func (rt RotationType) String() string {
	return string(rt)
}

// LeaveWindow is an approved leave period, inclusive on both ends
type LeaveWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the given calendar day falls inside the window
func (w LeaveWindow) Contains(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(w.Start)) && !d.After(DateOf(w.End))
}

// Engineer is a roster member as provided by the roster collaborator.
// The planner never mutates engineers; YTD counters are only advanced by
// the store's commit path.
type Engineer struct {
	ID     string
	Name   string
	Skills []string

	YTDWaakdienstWeeks int
	YTDIncidentWeeks   int
	TotalHours         float64

	Leave []LeaveWindow
}

// HasSkill reports whether the engineer carries the given skill tag
func (e *Engineer) HasSkill(tag string) bool {
	for _, s := range e.Skills {
		if s == tag {
			return true
		}
	}
	return false
}

// YTDWeeks returns the engineer's year-to-date week counter for the rotation
func (e *Engineer) YTDWeeks(rt RotationType) int {
	if rt == RotationWaakdienst {
		return e.YTDWaakdienstWeeks
	}
	return e.YTDIncidentWeeks
}

// OnLeave reports whether the engineer has approved leave covering the day
func (e *Engineer) OnLeave(day time.Time) bool {
	for _, w := range e.Leave {
		if w.Contains(day) {
			return true
		}
	}
	return false
}

// ExistingAssignment is a persisted assignment row loaded for the planning
// window plus the surrounding gap lookback. Used for availability, gap and
// consecutive-week checks that span beyond the current session.
type ExistingAssignment struct {
	EngineerID string
	Rotation   RotationType
	Role       string
	Status     string
	Date       time.Time
}

// Countable reports whether the row participates in conflict and gap
// checks (declined and cancelled assignments do not)
func (a ExistingAssignment) Countable() bool {
	return a.Status == StatusConfirmed || a.Status == StatusProposed
}

// Segment is one contiguous time-boxed coverage block
type Segment struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

// Hours returns the segment duration in hours
func (s Segment) Hours() float64 {
	return s.End.Sub(s.Start).Hours()
}

// AssignmentIntent is an assignment the planner wants to create. Intents
// are ephemeral: preview mode discards them, commit mode hands them to the
// store in a single transaction.
type AssignmentIntent struct {
	EngineerID string
	Rotation   RotationType
	Role       string
	WeekStart  time.Time
	Segment    Segment
}

// CandidateScore pairs an engineer with a fairness score for one week's
// selection. Violations lists the soft constraints the candidate failed
// when selection had to fall back to relaxed filtering.
type CandidateScore struct {
	Engineer   *Engineer
	Score      float64
	Violations []string
}

// WeekOutcome is the result of planning a single week of one rotation
type WeekOutcome struct {
	WeekStart  time.Time
	Rotation   RotationType
	EngineerID string
	StandbyID  string
	Intents    []AssignmentIntent
	Warnings   []string

	// Unassigned holds the reason no engineer could be assigned; empty
	// when the week was assigned
	Unassigned string
}

// DateOf truncates a timestamp to its calendar day in UTC
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameWeek reports whether two dates fall in the same rotation week given
// the week's anchor weekday
func SameWeek(a, b time.Time, anchor time.Weekday) bool {
	return WeekStartOf(a, anchor).Equal(WeekStartOf(b, anchor))
}

// WeekStartOf returns the most recent anchor weekday on or before the date
func WeekStartOf(day time.Time, anchor time.Weekday) time.Time {
	d := DateOf(day)
	offset := (int(d.Weekday()) - int(anchor) + 7) % 7
	return d.AddDate(0, 0, -offset)
}
