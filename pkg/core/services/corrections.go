package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mvdbrink/teamplanner/pkg/core/planner"
	"github.com/mvdbrink/teamplanner/pkg/db"
)

// ErrShiftConflict wraps the conflicts that block a manual correction
type ErrShiftConflict struct {
	Conflicts []string
}

func (e *ErrShiftConflict) Error() string {
	return fmt.Sprintf("shift correction blocked: %s", strings.Join(e.Conflicts, "; "))
}

// MoveShift moves one assignment to a new date after validating the
// engineer is free of conflicts on the target date
func MoveShift(ctx context.Context, store db.PlanningStore, logger *zap.Logger, assignmentID string, newDate time.Time) error {
	assignment, engineer, err := loadCorrectionTarget(ctx, store, assignmentID)
	if err != nil {
		return err
	}

	// The assignment leaves its old date, so it must not conflict with
	// itself on the new one
	if err := validateTargetDate(ctx, store, assignment, engineer, newDate, true); err != nil {
		return err
	}

	if err := store.MoveAssignment(ctx, assignmentID, planner.DateOf(newDate)); err != nil {
		return fmt.Errorf("failed to move assignment: %w", err)
	}

	logger.Info("assignment moved",
		zap.String("assignment", assignmentID),
		zap.String("engineer", assignment.EngineerID),
		zap.Time("from", assignment.Date),
		zap.Time("to", planner.DateOf(newDate)))
	return nil
}

// CopyShift duplicates an assignment onto a new date and returns the new
// assignment's id
func CopyShift(ctx context.Context, store db.PlanningStore, logger *zap.Logger, assignmentID string, newDate time.Time) (string, error) {
	assignment, engineer, err := loadCorrectionTarget(ctx, store, assignmentID)
	if err != nil {
		return "", err
	}

	// The source stays in place, so it keeps constraining the copy
	if err := validateTargetDate(ctx, store, assignment, engineer, newDate, false); err != nil {
		return "", err
	}

	newID, err := store.CopyAssignment(ctx, assignmentID, planner.DateOf(newDate))
	if err != nil {
		return "", fmt.Errorf("failed to copy assignment: %w", err)
	}

	logger.Info("assignment copied",
		zap.String("source", assignmentID),
		zap.String("copy", newID),
		zap.Time("date", planner.DateOf(newDate)))
	return newID, nil
}

// RemoveShift deletes one assignment. The store drops the parent shift
// occurrence if no other occupants remain.
func RemoveShift(ctx context.Context, store db.PlanningStore, logger *zap.Logger, assignmentID string) error {
	assignment, err := store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to fetch assignment %s: %w", assignmentID, err)
	}

	if err := store.DeleteAssignment(ctx, assignmentID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	logger.Info("assignment deleted",
		zap.String("assignment", assignmentID),
		zap.String("engineer", assignment.EngineerID),
		zap.Time("date", assignment.Date))
	return nil
}

func loadCorrectionTarget(ctx context.Context, store db.PlanningStore, assignmentID string) (*db.Assignment, *planner.Engineer, error) {
	assignment, err := store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch assignment %s: %w", assignmentID, err)
	}

	team, err := store.GetTeamEngineers(ctx, assignment.TeamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch team roster: %w", err)
	}

	for _, record := range team {
		if record.ID == assignment.EngineerID {
			engineers := toPlannerEngineers([]db.Engineer{record})
			return assignment, engineers[0], nil
		}
	}
	return nil, nil, fmt.Errorf("engineer %s is no longer on team %s", assignment.EngineerID, assignment.TeamID)
}

// validateTargetDate applies the same hard constraints the planner uses:
// leave, overlapping assignments and the rotation gap on the target date.
// excludeSelf drops the assignment under correction from the history.
func validateTargetDate(ctx context.Context, store db.PlanningStore, assignment *db.Assignment, engineer *planner.Engineer, newDate time.Time, excludeSelf bool) error {
	day := planner.DateOf(newDate)
	rotation := planner.RotationType(assignment.Category)

	from := day.AddDate(0, 0, -rotation.GapDays())
	to := day.AddDate(0, 0, rotation.GapDays())
	history, err := store.GetExistingAssignments(ctx, assignment.TeamID, from, to)
	if err != nil {
		return fmt.Errorf("failed to fetch surrounding assignments: %w", err)
	}

	others := make([]db.Assignment, 0, len(history))
	for _, h := range history {
		if excludeSelf && h.ID == assignment.ID {
			continue
		}
		others = append(others, h)
	}
	existing := toExistingAssignments(others)

	var conflicts []string
	if ok, reason := planner.HasRequiredSkill(engineer, rotation); !ok {
		conflicts = append(conflicts, reason)
	}
	if ok, reason := planner.IsAvailable(engineer, day, existing, nil); !ok {
		conflicts = append(conflicts, reason)
	}
	if ok, reason := planner.SatisfiesGap(engineer, rotation, day, existing, nil); !ok {
		conflicts = append(conflicts, reason)
	}
	if len(conflicts) > 0 {
		return &ErrShiftConflict{Conflicts: conflicts}
	}
	return nil
}
