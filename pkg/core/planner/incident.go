package planner

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// IncidentPlanner builds Monday-Friday business-hour coverage one week at
// a time. Like the waakdienst planner it keeps the same engineer for the
// whole week; an optional standby track runs in parallel with a second
// engineer.
type IncidentPlanner struct {
	qualified []*Engineer
	existing  []ExistingAssignment
	scorer    *Scorer
	algorithm Algorithm
	logger    *zap.Logger
}

// NewIncidentPlanner creates a planner over the incident-qualified pool
func NewIncidentPlanner(qualified []*Engineer, existing []ExistingAssignment, algorithm Algorithm, logger *zap.Logger) *IncidentPlanner {
	return &IncidentPlanner{
		qualified: qualified,
		existing:  existing,
		scorer:    NewScorer(RotationIncident, qualified, existing, logger),
		algorithm: algorithm,
		logger:    logger,
	}
}

// Spread exposes the fairness spread of the qualified pool for reporting
func (p *IncidentPlanner) Spread(session *Session) float64 {
	return p.scorer.Spread(session)
}

// PlanWeek selects a primary engineer (and optionally a standby) for the
// week anchored on the given Monday and emits the five business-hour
// blocks per engineer as assignment intents.
func (p *IncidentPlanner) PlanWeek(weekStart time.Time, includeStandby bool, session *Session) WeekOutcome {
	week := DateOf(weekStart)
	outcome := WeekOutcome{WeekStart: week, Rotation: RotationIncident}

	if len(p.qualified) == 0 {
		outcome.Unassigned = "no engineers qualified for incident response"
		return outcome
	}

	segments := BusinessHourSegments(week)
	days := CoverageDays(segments)

	primary := p.selectForWeek(week, days, session, nil, &outcome)
	if primary == nil {
		if outcome.Unassigned == "" {
			outcome.Unassigned = fmt.Sprintf("no available incident candidate for week %s", week.Format("2006-01-02"))
		}
		return outcome
	}

	outcome.EngineerID = primary.ID
	primaryIntents := appendWeekIntents(nil, primary.ID, RolePrimary, week, segments)
	outcome.Intents = append(outcome.Intents, primaryIntents...)
	session.RecordWeek(RotationIncident, primary.ID, week, RolePrimary, primaryIntents)

	p.logger.Info("assigned incident week",
		zap.String("engineer", primary.ID),
		zap.Time("week_start", week))

	if includeStandby {
		standby := p.selectForWeek(week, days, session, primary, &outcome)
		if standby == nil {
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("no standby engineer available for incident week %s", week.Format("2006-01-02")))
			// A missing standby never fails the week
			outcome.Unassigned = ""
		} else {
			outcome.StandbyID = standby.ID
			standbyIntents := appendWeekIntents(nil, standby.ID, RoleStandby, week, segments)
			outcome.Intents = append(outcome.Intents, standbyIntents...)
			session.RecordWeek(RotationIncident, standby.ID, week, RoleStandby, standbyIntents)

			p.logger.Info("assigned incident standby",
				zap.String("engineer", standby.ID),
				zap.Time("week_start", week))
		}
	}

	return outcome
}

// selectForWeek runs the shared selection pipeline: availability and
// previous-week hard exclusions, soft cap/gap filtering with gap-only
// relaxation, then ranking. exclude removes the week's primary when
// picking a standby.
func (p *IncidentPlanner) selectForWeek(week time.Time, days []time.Time, session *Session, exclude *Engineer, outcome *WeekOutcome) *Engineer {
	previous := p.previousWeekAssignee(week, session)

	var pool []*Engineer
	for _, e := range p.qualified {
		if e.ID == previous || (exclude != nil && e.ID == exclude.ID) {
			continue
		}

		available := true
		for _, day := range days {
			if ok, reason := IsAvailable(e, day, p.existing, session); !ok {
				p.logger.Debug("candidate unavailable", zap.String("engineer", e.ID), zap.String("reason", reason))
				available = false
				break
			}
		}
		if available {
			pool = append(pool, e)
		}
	}

	if len(pool) == 0 {
		return nil
	}

	var capOK []*Engineer
	for _, e := range pool {
		if ok, _ := WithinWorkloadCap(e, RotationIncident, session); ok {
			capOK = append(capOK, e)
		}
	}
	if len(capOK) == 0 {
		if exclude == nil {
			outcome.Unassigned = fmt.Sprintf("all incident candidates for week %s are at the annual cap", week.Format("2006-01-02"))
		}
		return nil
	}

	var strict []*Engineer
	gapReasons := make(map[string]string)
	for _, e := range capOK {
		if ok, reason := SatisfiesGap(e, RotationIncident, week, p.existing, session); ok {
			strict = append(strict, e)
		} else {
			gapReasons[e.ID] = reason
		}
	}

	candidates := strict
	relaxed := false
	if len(candidates) == 0 {
		candidates = capOK
		relaxed = true
		p.logger.Warn("no incident candidate satisfies the gap requirement, relaxing",
			zap.Time("week_start", week))
	}

	var selected *Engineer
	if p.algorithm == AlgorithmSequential {
		selected = nextInRotation(candidates, previous)
	} else {
		selected = p.scorer.Rank(candidates, week, session)[0].Engineer
	}

	if relaxed {
		if reason, ok := gapReasons[selected.ID]; ok {
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("incident week %s assigned under relaxed constraints: %s", week.Format("2006-01-02"), reason))
		}
	}

	return selected
}

// previousWeekAssignee returns the engineer holding the immediately
// preceding incident week, from this session or persisted history
func (p *IncidentPlanner) previousWeekAssignee(week time.Time, session *Session) string {
	previous := week.AddDate(0, 0, -7)

	if id, ok := session.AssigneeFor(RotationIncident, previous); ok {
		return id
	}

	for _, a := range p.existing {
		if a.Rotation != RotationIncident || a.Role != RolePrimary || !a.Countable() {
			continue
		}
		if WeekStartOf(a.Date, IncidentAnchor).Equal(previous) {
			return a.EngineerID
		}
	}

	return ""
}

func appendWeekIntents(intents []AssignmentIntent, engineerID, role string, week time.Time, segments []Segment) []AssignmentIntent {
	for _, seg := range segments {
		intents = append(intents, AssignmentIntent{
			EngineerID: engineerID,
			Rotation:   RotationIncident,
			Role:       role,
			WeekStart:  week,
			Segment:    seg,
		})
	}
	return intents
}
