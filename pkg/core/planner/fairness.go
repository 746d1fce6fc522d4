package planner

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Fairness scoring weights. Lower score = more fair to assign next.
const (
	// sessionPenaltyWeight escalates against assigning the same engineer
	// repeatedly within one run
	sessionPenaltyWeight = 1.5

	// recencyBonusPerWeek rewards engineers whose last duty is further in
	// the past
	recencyBonusPerWeek = 0.1

	// recencyCapWeeks bounds the recency lookback; engineers with no
	// recent duty at all get the full bonus
	recencyCapWeeks = 10
)

// Scorer ranks engineers by fairness for one rotation type. The qualified
// pool is fixed at construction so the team average stays consistent for
// the whole run.
type Scorer struct {
	rotation  RotationType
	qualified []*Engineer
	history   []ExistingAssignment
	logger    *zap.Logger
}

// NewScorer creates a fairness scorer over the full qualified pool for
// the rotation. history carries persisted assignments so recency extends
// beyond the current session.
func NewScorer(rotation RotationType, qualified []*Engineer, history []ExistingAssignment, logger *zap.Logger) *Scorer {
	return &Scorer{
		rotation:  rotation,
		qualified: qualified,
		history:   history,
		logger:    logger,
	}
}

// Score computes the fairness score for assigning the engineer the week
// starting at weekStart. Lower is more eligible.
func (sc *Scorer) Score(e *Engineer, weekStart time.Time, session *Session) float64 {
	total := float64(e.YTDWeeks(sc.rotation) + session.Weeks(sc.rotation, e.ID))
	avg := sc.teamAverage(session)

	deviation := total - avg
	sessionPenalty := float64(session.Weeks(sc.rotation, e.ID)) * sessionPenaltyWeight
	recencyBonus := sc.recencyBonus(e, weekStart, session)

	score := deviation + sessionPenalty - recencyBonus

	sc.logger.Debug("fairness score",
		zap.String("rotation", sc.rotation.String()),
		zap.String("engineer", e.ID),
		zap.Float64("total_weeks", total),
		zap.Float64("team_average", avg),
		zap.Float64("session_penalty", sessionPenalty),
		zap.Float64("recency_bonus", recencyBonus),
		zap.Float64("score", score))

	return score
}

// Rank scores every candidate and orders them lowest-first. Ties break on
// engineer ID so planning runs are reproducible.
func (sc *Scorer) Rank(candidates []*Engineer, weekStart time.Time, session *Session) []CandidateScore {
	scored := make([]CandidateScore, 0, len(candidates))
	for _, e := range candidates {
		scored = append(scored, CandidateScore{
			Engineer: e,
			Score:    sc.Score(e, weekStart, session),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score < scored[j].Score
		}
		return scored[i].Engineer.ID < scored[j].Engineer.ID
	})

	return scored
}

// Spread returns the maximum deviation of any qualified engineer's
// projected total (YTD + session weeks) from the team average
func (sc *Scorer) Spread(session *Session) float64 {
	avg := sc.teamAverage(session)
	var spread float64
	for _, e := range sc.qualified {
		total := float64(e.YTDWeeks(sc.rotation) + session.Weeks(sc.rotation, e.ID))
		dev := total - avg
		if dev < 0 {
			dev = -dev
		}
		if dev > spread {
			spread = dev
		}
	}
	return spread
}

// teamAverage computes the mean of (YTD + session weeks) across the
// qualified pool
func (sc *Scorer) teamAverage(session *Session) float64 {
	if len(sc.qualified) == 0 {
		return 0
	}
	var sum float64
	for _, e := range sc.qualified {
		sum += float64(e.YTDWeeks(sc.rotation) + session.Weeks(sc.rotation, e.ID))
	}
	return sum / float64(len(sc.qualified))
}

// recencyBonus rewards time elapsed since the engineer's most recent
// assignment of this rotation, from session or persisted history, capped
// at recencyCapWeeks
func (sc *Scorer) recencyBonus(e *Engineer, weekStart time.Time, session *Session) float64 {
	weeks := sc.weeksSinceLast(e, weekStart, session)
	bonus := float64(weeks) * recencyBonusPerWeek
	if bonus > float64(recencyCapWeeks)*recencyBonusPerWeek {
		bonus = float64(recencyCapWeeks) * recencyBonusPerWeek
	}
	return bonus
}

func (sc *Scorer) weeksSinceLast(e *Engineer, weekStart time.Time, session *Session) int {
	week := DateOf(weekStart)
	var mostRecent time.Time
	found := false

	if last, ok := session.LastWeek(sc.rotation, e.ID); ok {
		mostRecent = last
		found = true
	}

	anchor := WaakdienstAnchor
	if sc.rotation == RotationIncident {
		anchor = IncidentAnchor
	}

	for _, a := range sc.history {
		if a.EngineerID != e.ID || a.Rotation != sc.rotation || !a.Countable() {
			continue
		}
		assignmentWeek := WeekStartOf(a.Date, anchor)
		if assignmentWeek.Before(week) && (!found || assignmentWeek.After(mostRecent)) {
			mostRecent = assignmentWeek
			found = true
		}
	}

	if !found {
		return recencyCapWeeks
	}

	weeks := int(week.Sub(mostRecent).Hours() / 24 / 7)
	if weeks < 0 {
		return 0
	}
	return weeks
}
