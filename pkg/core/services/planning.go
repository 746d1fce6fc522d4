package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/mvdbrink/teamplanner/pkg/core/planner"
	"github.com/mvdbrink/teamplanner/pkg/db"
)

// Planning modes
type Mode string

const (
	// ModePreview computes the full plan and discards it: no occurrences,
	// assignments or counter updates are written
	ModePreview Mode = "preview"

	// ModeCommit persists the plan through the store in one transaction
	ModeCommit Mode = "commit"
)

// historyLookbackDays covers the recency window the fairness scorer reads
// plus the longest gap requirement
const historyLookbackDays = 84

// PlanningRequest describes one orchestration run
type PlanningRequest struct {
	TeamID         string
	StartDate      time.Time
	Weeks          int
	Algorithm      planner.Algorithm
	Mode           Mode
	IncludeStandby bool
}

// WeekAssignment is one successfully planned week in the result payload
type WeekAssignment struct {
	WeekStart  time.Time
	Rotation   planner.RotationType
	EngineerID string
	StandbyID  string
	Segments   int
}

// UnassignedWeek reports a week no engineer could be assigned to
type UnassignedWeek struct {
	WeekStart time.Time
	Rotation  planner.RotationType
	Reason    string
}

// PlanningSummary aggregates counts across the whole run
type PlanningSummary struct {
	TotalWeeks      int
	AssignedWeeks   int
	UnassignedWeeks int
	CoveragePct     float64

	// FairnessSpread is the maximum deviation from the team average of
	// projected (YTD + session) weeks, per rotation
	FairnessSpread map[planner.RotationType]float64
}

// PlanningResult is the structured outcome of one GeneratePlanning call.
// Success stays true when at least one week was assigned even if others
// were not; prerequisite failures and commit failures make it false.
type PlanningResult struct {
	Success   bool
	Mode      Mode
	Committed bool
	RunID     string

	Validation *ValidationResult
	Weeks      []WeekAssignment
	Unassigned []UnassignedWeek
	Intents    []planner.AssignmentIntent
	Summary    PlanningSummary

	Errors   []string
	Warnings []string
}

// GeneratePlanning runs the full orchestration: prerequisite validation,
// both rotation planners across the requested weeks, aggregation, and
// either discard (preview) or a single transactional commit.
func GeneratePlanning(ctx context.Context, store db.PlanningStore, logger *zap.Logger, req PlanningRequest) (*PlanningResult, error) {
	if req.Weeks <= 0 {
		return nil, fmt.Errorf("weeks must be positive, got %d", req.Weeks)
	}
	if req.Algorithm == "" {
		req.Algorithm = planner.AlgorithmBalanced
	}
	if req.Mode == "" {
		req.Mode = ModePreview
	}

	logger.Info("starting planning run",
		zap.String("team", req.TeamID),
		zap.Time("start", req.StartDate),
		zap.Int("weeks", req.Weeks),
		zap.String("algorithm", string(req.Algorithm)),
		zap.String("mode", string(req.Mode)))

	result := &PlanningResult{Mode: req.Mode}

	if req.Algorithm == planner.AlgorithmCustom {
		result.Errors = append(result.Errors, "custom algorithm is not supported yet")
		return result, nil
	}

	// Prerequisite gate: a failure here returns immediately with no side
	// effects of any kind
	validation, err := ValidatePrerequisites(ctx, store, logger, req.TeamID)
	if err != nil {
		return nil, fmt.Errorf("prerequisite validation failed: %w", err)
	}
	result.Validation = validation
	result.Warnings = append(result.Warnings, validation.Warnings...)
	if !validation.Success {
		result.Errors = append(result.Errors, validation.Errors...)
		logger.Warn("prerequisites not met, aborting planning run", zap.Strings("errors", validation.Errors))
		return result, nil
	}

	waakdienst, incident, existing, err := loadRoster(ctx, store, req)
	if err != nil {
		return nil, err
	}

	session := planner.NewSession()
	wPlanner := planner.NewWaakdienstPlanner(waakdienst, existing, req.Algorithm, logger)
	iPlanner := planner.NewIncidentPlanner(incident, existing, req.Algorithm, logger)

	wAnchors, err := weekAnchors(req.StartDate, req.Weeks, planner.WaakdienstAnchor)
	if err != nil {
		return nil, err
	}
	iAnchors, err := weekAnchors(req.StartDate, req.Weeks, planner.IncidentAnchor)
	if err != nil {
		return nil, err
	}

	for _, anchor := range wAnchors {
		collectOutcome(result, wPlanner.PlanWeek(anchor, session))
	}
	for _, anchor := range iAnchors {
		collectOutcome(result, iPlanner.PlanWeek(anchor, req.IncludeStandby, session))
	}

	result.Intents = session.Intents()
	result.Summary = summarize(result, req.Weeks)
	result.Summary.FairnessSpread = map[planner.RotationType]float64{
		planner.RotationWaakdienst: wPlanner.Spread(session),
		planner.RotationIncident:   iPlanner.Spread(session),
	}
	result.Success = result.Summary.AssignedWeeks > 0

	if req.Mode != ModeCommit {
		logger.Info("preview complete, discarding intents",
			zap.Int("intents", len(result.Intents)),
			zap.Float64("coverage_pct", result.Summary.CoveragePct))
		return result, nil
	}

	if err := commitRun(ctx, store, logger, req, result); err != nil {
		// Commit failure: the store rolled everything back; return the
		// computed plan as a de-facto preview alongside the error
		result.Success = false
		result.Committed = false
		result.Errors = append(result.Errors, fmt.Sprintf("commit failed: %v", err))
		logger.Error("planning commit failed", zap.Error(err))
		return result, nil
	}

	result.Committed = true
	logger.Info("planning run committed",
		zap.String("run_id", result.RunID),
		zap.Int("assignments", len(result.Intents)))

	return result, nil
}

func loadRoster(ctx context.Context, store db.PlanningStore, req PlanningRequest) ([]*planner.Engineer, []*planner.Engineer, []planner.ExistingAssignment, error) {
	wRecords, err := store.GetQualifiedEngineers(ctx, req.TeamID, planner.RotationWaakdienst.SkillTag())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch waakdienst roster: %w", err)
	}
	iRecords, err := store.GetQualifiedEngineers(ctx, req.TeamID, planner.RotationIncident.SkillTag())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch incident roster: %w", err)
	}

	from := planner.DateOf(req.StartDate).AddDate(0, 0, -historyLookbackDays)
	to := planner.DateOf(req.StartDate).AddDate(0, 0, 7*req.Weeks+planner.RotationWaakdienst.GapDays())
	history, err := store.GetExistingAssignments(ctx, req.TeamID, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch assignment history: %w", err)
	}

	return toPlannerEngineers(wRecords), toPlannerEngineers(iRecords), toExistingAssignments(history), nil
}

// weekAnchors expands the requested range into week start dates on the
// given weekday, first anchor on or after the start date's week
func weekAnchors(start time.Time, weeks int, anchor time.Weekday) ([]time.Time, error) {
	first := planner.WeekStartOf(start, anchor)
	if anchor == planner.WaakdienstAnchor && first.Before(planner.DateOf(start)) {
		// Waakdienst weeks begin on the next Wednesday; incident weeks
		// cover the whole week the start date falls in
		first = first.AddDate(0, 0, 7)
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Count:   weeks,
		Dtstart: first,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build week recurrence: %w", err)
	}

	dates := rule.All()
	anchors := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		anchors = append(anchors, planner.DateOf(d))
	}
	return anchors, nil
}

func collectOutcome(result *PlanningResult, outcome planner.WeekOutcome) {
	result.Warnings = append(result.Warnings, outcome.Warnings...)

	if outcome.Unassigned != "" {
		result.Unassigned = append(result.Unassigned, UnassignedWeek{
			WeekStart: outcome.WeekStart,
			Rotation:  outcome.Rotation,
			Reason:    outcome.Unassigned,
		})
		result.Errors = append(result.Errors, outcome.Unassigned)
		return
	}

	result.Weeks = append(result.Weeks, WeekAssignment{
		WeekStart:  outcome.WeekStart,
		Rotation:   outcome.Rotation,
		EngineerID: outcome.EngineerID,
		StandbyID:  outcome.StandbyID,
		Segments:   len(outcome.Intents),
	})
}

func summarize(result *PlanningResult, weeks int) PlanningSummary {
	summary := PlanningSummary{
		TotalWeeks:      weeks * 2, // one waakdienst + one incident slot per calendar week
		AssignedWeeks:   len(result.Weeks),
		UnassignedWeeks: len(result.Unassigned),
	}
	if summary.TotalWeeks > 0 {
		summary.CoveragePct = float64(summary.AssignedWeeks) / float64(summary.TotalWeeks) * 100
	}
	return summary
}

// commitRun translates intents into store records and hands them to the
// store as one atomic unit
func commitRun(ctx context.Context, store db.PlanningStore, logger *zap.Logger, req PlanningRequest, result *PlanningResult) error {
	occurrences := make([]db.ShiftOccurrence, 0, len(result.Intents))
	assignments := make([]db.Assignment, 0, len(result.Intents))
	now := time.Now().UTC()

	for _, intent := range result.Intents {
		occ := db.ShiftOccurrence{
			ID:            uuid.New().String(),
			TeamID:        req.TeamID,
			Category:      intent.Rotation.String(),
			Date:          intent.Segment.Date,
			Start:         intent.Segment.Start,
			End:           intent.Segment.End,
			RequiredStaff: 1,
			Status:        db.OccurrencePlanned,
		}
		occurrences = append(occurrences, occ)

		assignments = append(assignments, db.Assignment{
			ID:           uuid.New().String(),
			OccurrenceID: occ.ID,
			EngineerID:   intent.EngineerID,
			TeamID:       req.TeamID,
			Category:     intent.Rotation.String(),
			Role:         intent.Role,
			Status:       planner.StatusConfirmed,
			Date:         intent.Segment.Date,
			Start:        intent.Segment.Start,
			End:          intent.Segment.End,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	run := db.PlanningRun{
		ID:              uuid.New().String(),
		TeamID:          req.TeamID,
		StartDate:       planner.DateOf(req.StartDate),
		Weeks:           req.Weeks,
		Algorithm:       string(req.Algorithm),
		Mode:            string(req.Mode),
		TotalWeeks:      result.Summary.TotalWeeks,
		AssignedWeeks:   result.Summary.AssignedWeeks,
		UnassignedWeeks: result.Summary.UnassignedWeeks,
		CoveragePct:     result.Summary.CoveragePct,
		Success:         result.Success,
		Errors:          result.Errors,
		CreatedAt:       now,
	}

	if err := store.CommitPlanning(ctx, run, occurrences, assignments); err != nil {
		return err
	}

	result.RunID = run.ID
	return nil
}

func toPlannerEngineers(records []db.Engineer) []*planner.Engineer {
	engineers := make([]*planner.Engineer, 0, len(records))
	for _, r := range records {
		leave := make([]planner.LeaveWindow, 0, len(r.Leave))
		for _, w := range r.Leave {
			leave = append(leave, planner.LeaveWindow{Start: w.Start, End: w.End})
		}
		engineers = append(engineers, &planner.Engineer{
			ID:                 r.ID,
			Name:               r.Name,
			Skills:             r.Skills,
			YTDWaakdienstWeeks: r.YTDWaakdienstWeeks,
			YTDIncidentWeeks:   r.YTDIncidentWeeks,
			TotalHours:         r.TotalHours,
			Leave:              leave,
		})
	}
	return engineers
}

func toExistingAssignments(records []db.Assignment) []planner.ExistingAssignment {
	existing := make([]planner.ExistingAssignment, 0, len(records))
	for _, r := range records {
		existing = append(existing, planner.ExistingAssignment{
			EngineerID: r.EngineerID,
			Rotation:   planner.RotationType(r.Category),
			Role:       r.Role,
			Status:     r.Status,
			Date:       r.Date,
		})
	}
	return existing
}
