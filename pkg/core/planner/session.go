package planner

import (
	"sort"
	"time"
)

// Session accumulates the assignments created so far in one planning run.
// Fairness scoring and the consecutive-week exclusion read from it, so
// weeks being built right now count just like persisted history.
//
// The session keeps explicit per-engineer week counters rather than
// re-deriving them from the intent list on every lookup.
type Session struct {
	intents []AssignmentIntent

	// weekCounts[rotation][engineerID] = primary weeks assigned this run
	weekCounts map[RotationType]map[string]int

	// weekAssignee[rotation][weekStart] = primary engineer for that week
	weekAssignee map[RotationType]map[time.Time]string

	// lastWeek[rotation][engineerID] = most recent primary week start
	lastWeek map[RotationType]map[string]time.Time

	// busyDates[engineerID] = calendar days with any session assignment
	busyDates map[string]map[time.Time]bool
}

// NewSession creates an empty planning session
func NewSession() *Session {
	return &Session{
		weekCounts:   make(map[RotationType]map[string]int),
		weekAssignee: make(map[RotationType]map[time.Time]string),
		lastWeek:     make(map[RotationType]map[string]time.Time),
		busyDates:    make(map[string]map[time.Time]bool),
	}
}

// RecordWeek registers one engineer's week of intents with the session.
// Only primary assignments advance the fairness counters; standby tracks
// are stored for conflict checks but do not count as worked weeks.
func (s *Session) RecordWeek(rt RotationType, engineerID string, weekStart time.Time, role string, intents []AssignmentIntent) {
	week := DateOf(weekStart)
	s.intents = append(s.intents, intents...)

	for _, intent := range intents {
		day := DateOf(intent.Segment.Date)
		if s.busyDates[intent.EngineerID] == nil {
			s.busyDates[intent.EngineerID] = make(map[time.Time]bool)
		}
		s.busyDates[intent.EngineerID][day] = true
	}

	if role != RolePrimary {
		return
	}

	if s.weekCounts[rt] == nil {
		s.weekCounts[rt] = make(map[string]int)
	}
	s.weekCounts[rt][engineerID]++

	if s.weekAssignee[rt] == nil {
		s.weekAssignee[rt] = make(map[time.Time]string)
	}
	s.weekAssignee[rt][week] = engineerID

	if s.lastWeek[rt] == nil {
		s.lastWeek[rt] = make(map[string]time.Time)
	}
	if last, ok := s.lastWeek[rt][engineerID]; !ok || week.After(last) {
		s.lastWeek[rt][engineerID] = week
	}
}

// Weeks returns the number of primary weeks assigned to the engineer for
// the rotation within this session
func (s *Session) Weeks(rt RotationType, engineerID string) int {
	return s.weekCounts[rt][engineerID]
}

// AssigneeFor returns the primary engineer assigned to the given week in
// this session, if any
func (s *Session) AssigneeFor(rt RotationType, weekStart time.Time) (string, bool) {
	id, ok := s.weekAssignee[rt][DateOf(weekStart)]
	return id, ok
}

// LastWeek returns the engineer's most recent primary week start for the
// rotation within this session
func (s *Session) LastWeek(rt RotationType, engineerID string) (time.Time, bool) {
	week, ok := s.lastWeek[rt][engineerID]
	return week, ok
}

// BusyOn reports whether the engineer already has a session assignment on
// the given calendar day
func (s *Session) BusyOn(engineerID string, day time.Time) bool {
	return s.busyDates[engineerID][DateOf(day)]
}

// Intents returns all intents accumulated so far, ordered by week start
// then engineer so runs are reproducible
func (s *Session) Intents() []AssignmentIntent {
	out := make([]AssignmentIntent, len(s.intents))
	copy(out, s.intents)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].WeekStart.Equal(out[j].WeekStart) {
			return out[i].WeekStart.Before(out[j].WeekStart)
		}
		if out[i].Rotation != out[j].Rotation {
			return out[i].Rotation < out[j].Rotation
		}
		return out[i].Segment.Start.Before(out[j].Segment.Start)
	})
	return out
}

// WeekDates returns the primary week starts assigned to the engineer for
// the rotation in this session
func (s *Session) WeekDates(rt RotationType, engineerID string) []time.Time {
	var weeks []time.Time
	for week, id := range s.weekAssignee[rt] {
		if id == engineerID {
			weeks = append(weeks, week)
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}
