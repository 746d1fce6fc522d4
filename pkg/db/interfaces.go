package db

import (
	"context"
	"time"
)

// RosterStore supplies the roster the planning core works from
type RosterStore interface {
	// GetQualifiedEngineers returns active team members holding the given
	// skill tag, with YTD counters and approved leave joined
	GetQualifiedEngineers(ctx context.Context, teamID, skill string) ([]Engineer, error)

	// GetTeamEngineers returns every active member of the team
	GetTeamEngineers(ctx context.Context, teamID string) ([]Engineer, error)
}

// AssignmentStore provides assignment history and manual corrections.
// Move, Copy and Delete each run in their own transaction and remove a
// shift occurrence left with zero remaining assignments.
type AssignmentStore interface {
	GetExistingAssignments(ctx context.Context, teamID string, from, to time.Time) ([]Assignment, error)
	GetAssignment(ctx context.Context, id string) (*Assignment, error)
	CountOccupants(ctx context.Context, occurrenceID string) (int, error)
	MoveAssignment(ctx context.Context, id string, newDate time.Time) error
	CopyAssignment(ctx context.Context, id string, newDate time.Time) (string, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// PlanningStore is the full store surface the orchestrator needs.
// CommitPlanning persists one run as a single atomic unit: all shift
// occurrences, all assignments, one YTD counter increment per
// (engineer, rotation, week), and the planning-run audit row; any
// failure rolls the whole commit back. Commits for the same team are
// serialized by the implementation.
type PlanningStore interface {
	RosterStore
	AssignmentStore

	HasShiftCategory(ctx context.Context, name string) (bool, error)
	CommitPlanning(ctx context.Context, run PlanningRun, occurrences []ShiftOccurrence, assignments []Assignment) error
}
