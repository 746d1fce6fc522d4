package planner

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Algorithm selects the candidate-ranking strategy for a planning run
type Algorithm string

const (
	// AlgorithmBalanced distributes weeks using fairness scoring
	AlgorithmBalanced Algorithm = "balanced"

	// AlgorithmSequential rotates through the qualified pool in ID order,
	// still honoring hard exclusions and workload caps
	AlgorithmSequential Algorithm = "sequential"

	// AlgorithmCustom is an extension point for pluggable rule sets
	AlgorithmCustom Algorithm = "custom"
)

// WaakdienstPlanner builds one week of full on-call coverage at a time.
// Weeks are anchored on Wednesday and consist of 12 fixed segments
// totalling 123 hours; the Wednesday 08:00-17:00 handover window is left
// to the incident rotation.
type WaakdienstPlanner struct {
	qualified []*Engineer
	existing  []ExistingAssignment
	scorer    *Scorer
	algorithm Algorithm
	logger    *zap.Logger
}

// NewWaakdienstPlanner creates a planner over the waakdienst-qualified
// pool. existing carries persisted assignments for the planning window
// plus the gap lookback.
func NewWaakdienstPlanner(qualified []*Engineer, existing []ExistingAssignment, algorithm Algorithm, logger *zap.Logger) *WaakdienstPlanner {
	return &WaakdienstPlanner{
		qualified: qualified,
		existing:  existing,
		scorer:    NewScorer(RotationWaakdienst, qualified, existing, logger),
		algorithm: algorithm,
		logger:    logger,
	}
}

// Spread exposes the fairness spread of the qualified pool for reporting
func (p *WaakdienstPlanner) Spread(session *Session) float64 {
	return p.scorer.Spread(session)
}

// PlanWeek selects an engineer for the week anchored on the given
// Wednesday and emits the 12 coverage segments as assignment intents.
// A week that cannot be assigned is reported in the outcome, never as an
// error: the run continues with the next week.
func (p *WaakdienstPlanner) PlanWeek(weekStart time.Time, session *Session) WeekOutcome {
	week := DateOf(weekStart)
	outcome := WeekOutcome{WeekStart: week, Rotation: RotationWaakdienst}

	if len(p.qualified) == 0 {
		outcome.Unassigned = "no engineers qualified for waakdienst"
		return outcome
	}

	segments := WaakdienstSegments(week)
	days := CoverageDays(segments)

	pool := p.availableCandidates(week, days, session, &outcome)
	if len(pool) == 0 {
		if outcome.Unassigned == "" {
			outcome.Unassigned = fmt.Sprintf("no available waakdienst candidate for week %s", week.Format("2006-01-02"))
		}
		return outcome
	}

	selected, violations := p.selectCandidate(pool, week, session, &outcome)
	if selected == nil {
		return outcome
	}

	for _, v := range violations {
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("waakdienst week %s assigned under relaxed constraints: %s", week.Format("2006-01-02"), v))
	}

	intents := make([]AssignmentIntent, 0, len(segments))
	for _, seg := range segments {
		intents = append(intents, AssignmentIntent{
			EngineerID: selected.ID,
			Rotation:   RotationWaakdienst,
			Role:       RolePrimary,
			WeekStart:  week,
			Segment:    seg,
		})
	}

	outcome.EngineerID = selected.ID
	outcome.Intents = intents
	session.RecordWeek(RotationWaakdienst, selected.ID, week, RolePrimary, intents)

	p.logger.Info("assigned waakdienst week",
		zap.String("engineer", selected.ID),
		zap.Time("week_start", week),
		zap.Int("segments", len(intents)))

	return outcome
}

// availableCandidates builds the candidate pool: qualified engineers,
// minus the previous week's assignee (hard exclusion), minus anyone on
// leave or already assigned during the week's coverage days
func (p *WaakdienstPlanner) availableCandidates(week time.Time, days []time.Time, session *Session, outcome *WeekOutcome) []*Engineer {
	previous := p.previousWeekAssignee(week, session)

	var pool []*Engineer
	for _, e := range p.qualified {
		if e.ID == previous {
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

	if len(pool) == 0 && previous != "" {
		outcome.Unassigned = fmt.Sprintf("no available waakdienst candidate for week %s (previous week's engineer excluded)", week.Format("2006-01-02"))
	}

	return pool
}

// selectCandidate applies the soft cap/gap filter and picks the best
// remaining candidate. When the filter empties the pool, gap-excluded
// candidates are readmitted with a recorded warning; the workload cap is
// never relaxed so the annual-cap invariant survives every commit.
func (p *WaakdienstPlanner) selectCandidate(pool []*Engineer, week time.Time, session *Session, outcome *WeekOutcome) (*Engineer, []string) {
	var capOK []*Engineer
	for _, e := range pool {
		if ok, _ := WithinWorkloadCap(e, RotationWaakdienst, session); ok {
			capOK = append(capOK, e)
		}
	}
	if len(capOK) == 0 {
		outcome.Unassigned = fmt.Sprintf("all waakdienst candidates for week %s are at the annual cap", week.Format("2006-01-02"))
		return nil, nil
	}

	var strict []*Engineer
	gapReasons := make(map[string]string)
	for _, e := range capOK {
		if ok, reason := SatisfiesGap(e, RotationWaakdienst, week, p.existing, session); ok {
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
		p.logger.Warn("no waakdienst candidate satisfies the gap requirement, relaxing",
			zap.Time("week_start", week))
	}

	selected := p.pick(candidates, week, session)
	if selected == nil {
		outcome.Unassigned = fmt.Sprintf("no waakdienst candidate for week %s", week.Format("2006-01-02"))
		return nil, nil
	}

	var violations []string
	if relaxed {
		if reason, ok := gapReasons[selected.ID]; ok {
			violations = append(violations, reason)
		}
	}

	return selected, violations
}

func (p *WaakdienstPlanner) pick(candidates []*Engineer, week time.Time, session *Session) *Engineer {
	if len(candidates) == 0 {
		return nil
	}

	if p.algorithm == AlgorithmSequential {
		return nextInRotation(candidates, p.previousWeekAssignee(week, session))
	}

	ranked := p.scorer.Rank(candidates, week, session)
	return ranked[0].Engineer
}

// previousWeekAssignee returns the engineer who holds the immediately
// preceding waakdienst week, whether assigned in this session or already
// persisted
func (p *WaakdienstPlanner) previousWeekAssignee(week time.Time, session *Session) string {
	previous := week.AddDate(0, 0, -7)

	if id, ok := session.AssigneeFor(RotationWaakdienst, previous); ok {
		return id
	}

	for _, a := range p.existing {
		if a.Rotation != RotationWaakdienst || a.Role != RolePrimary || !a.Countable() {
			continue
		}
		if WeekStartOf(a.Date, WaakdienstAnchor).Equal(previous) {
			return a.EngineerID
		}
	}

	return ""
}

// nextInRotation implements the sequential algorithm: the qualified pool
// ordered by ID, advanced cyclically from the previous assignee
func nextInRotation(candidates []*Engineer, previous string) *Engineer {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]*Engineer, len(candidates))
	copy(sorted, candidates)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].ID < sorted[j-1].ID; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	if previous == "" {
		return sorted[0]
	}
	for _, e := range sorted {
		if e.ID > previous {
			return e
		}
	}
	return sorted[0]
}
