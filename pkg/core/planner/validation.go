package planner

import (
	"fmt"
	"time"
)

// Validation predicates. Each is a pure function returning pass/fail plus
// a human-readable reason. The planners use them as soft filters during
// candidate selection; the services layer uses CheckAssignment as the
// hard gate before an assignment is created.

// IsAvailable reports whether the engineer is free on the given calendar
// day: no approved leave and no existing or session assignment on it.
func IsAvailable(e *Engineer, day time.Time, existing []ExistingAssignment, session *Session) (bool, string) {
	d := DateOf(day)

	if e.OnLeave(d) {
		return false, fmt.Sprintf("engineer %s has approved leave on %s", e.ID, d.Format("2006-01-02"))
	}

	for _, a := range existing {
		if a.EngineerID == e.ID && a.Countable() && DateOf(a.Date).Equal(d) {
			return false, fmt.Sprintf("engineer %s already assigned on %s", e.ID, d.Format("2006-01-02"))
		}
	}

	if session != nil && session.BusyOn(e.ID, d) {
		return false, fmt.Sprintf("engineer %s already assigned on %s in this run", e.ID, d.Format("2006-01-02"))
	}

	return true, ""
}

// HasRequiredSkill reports whether the engineer holds the skill tag the
// rotation requires
func HasRequiredSkill(e *Engineer, rt RotationType) (bool, string) {
	if !e.HasSkill(rt.SkillTag()) {
		return false, fmt.Sprintf("engineer %s lacks the %s skill", e.ID, rt.SkillTag())
	}
	return true, ""
}

// WithinWorkloadCap reports whether assigning one more week keeps the
// engineer under the rotation's annual cap, counting weeks already
// assigned in this session
func WithinWorkloadCap(e *Engineer, rt RotationType, session *Session) (bool, string) {
	total := e.YTDWeeks(rt)
	if session != nil {
		total += session.Weeks(rt, e.ID)
	}
	if total >= rt.AnnualCap() {
		return false, fmt.Sprintf("engineer %s reached the %s cap (%d/%d weeks)",
			e.ID, rt, total, rt.AnnualCap())
	}
	return true, ""
}

// SatisfiesGap reports whether the candidate date keeps the required
// minimum distance from the engineer's other assignments of the same
// rotation. Assignments in the same rotation week are exempt.
func SatisfiesGap(e *Engineer, rt RotationType, day time.Time, existing []ExistingAssignment, session *Session) (bool, string) {
	d := DateOf(day)
	gap := rt.GapDays()
	anchor := WaakdienstAnchor
	if rt == RotationIncident {
		anchor = IncidentAnchor
	}

	violates := func(other time.Time) bool {
		if SameWeek(d, other, anchor) {
			return false
		}
		days := int(d.Sub(DateOf(other)).Hours() / 24)
		if days < 0 {
			days = -days
		}
		return days < gap
	}

	for _, a := range existing {
		if a.EngineerID != e.ID || a.Rotation != rt || !a.Countable() {
			continue
		}
		if violates(a.Date) {
			return false, fmt.Sprintf("engineer %s violates the %d-day %s gap near %s",
				e.ID, gap, rt, DateOf(a.Date).Format("2006-01-02"))
		}
	}

	if session != nil {
		for _, week := range session.WeekDates(rt, e.ID) {
			if violates(week) {
				return false, fmt.Sprintf("engineer %s violates the %d-day %s gap near %s",
					e.ID, gap, rt, week.Format("2006-01-02"))
			}
		}
	}

	return true, ""
}

// HasCapacity reports whether a shift occurrence can still take another
// assignment, given its current confirmed+proposed count and required
// staff
func HasCapacity(current, required int) (bool, string) {
	if current >= required {
		return false, fmt.Sprintf("shift is fully staffed (%d/%d)", current, required)
	}
	return true, ""
}

// CheckAssignment runs every applicable predicate for assigning the
// engineer a full week of the rotation and aggregates the failures. Used
// as the hard validation at assignment-creation time; an empty result
// means the assignment is allowed.
func CheckAssignment(e *Engineer, rt RotationType, weekStart time.Time, days []time.Time, existing []ExistingAssignment, session *Session) []string {
	var conflicts []string

	if ok, reason := HasRequiredSkill(e, rt); !ok {
		conflicts = append(conflicts, reason)
	}
	if ok, reason := WithinWorkloadCap(e, rt, session); !ok {
		conflicts = append(conflicts, reason)
	}
	if ok, reason := SatisfiesGap(e, rt, weekStart, existing, session); !ok {
		conflicts = append(conflicts, reason)
	}
	for _, day := range days {
		if ok, reason := IsAvailable(e, day, existing, session); !ok {
			conflicts = append(conflicts, reason)
		}
	}

	return conflicts
}
