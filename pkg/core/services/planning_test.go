package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mvdbrink/teamplanner/pkg/core/planner"
	"github.com/mvdbrink/teamplanner/pkg/db"
)

// mockPlanningStore implements db.PlanningStore for testing
type mockPlanningStore struct {
	engineers  []db.Engineer
	existing   []db.Assignment
	categories map[string]bool

	committedRun         *db.PlanningRun
	committedOccurrences []db.ShiftOccurrence
	committedAssignments []db.Assignment

	movedTo    map[string]time.Time
	copiedFrom []string
	deleted    []string

	getEngineersErr error
	getExistingErr  error
	commitErr       error
}

func newMockStore(engineers ...db.Engineer) *mockPlanningStore {
	return &mockPlanningStore{
		engineers:  engineers,
		categories: map[string]bool{"waakdienst": true, "incident": true},
		movedTo:    make(map[string]time.Time),
	}
}

func (m *mockPlanningStore) GetQualifiedEngineers(ctx context.Context, teamID, skill string) ([]db.Engineer, error) {
	if m.getEngineersErr != nil {
		return nil, m.getEngineersErr
	}
	var out []db.Engineer
	for _, e := range m.engineers {
		for _, s := range e.Skills {
			if s == skill {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (m *mockPlanningStore) GetTeamEngineers(ctx context.Context, teamID string) ([]db.Engineer, error) {
	if m.getEngineersErr != nil {
		return nil, m.getEngineersErr
	}
	return m.engineers, nil
}

func (m *mockPlanningStore) GetExistingAssignments(ctx context.Context, teamID string, from, to time.Time) ([]db.Assignment, error) {
	if m.getExistingErr != nil {
		return nil, m.getExistingErr
	}
	return m.existing, nil
}

func (m *mockPlanningStore) GetAssignment(ctx context.Context, id string) (*db.Assignment, error) {
	for i := range m.existing {
		if m.existing[i].ID == id {
			return &m.existing[i], nil
		}
	}
	return nil, errors.New("assignment not found")
}

func (m *mockPlanningStore) CountOccupants(ctx context.Context, occurrenceID string) (int, error) {
	count := 0
	for _, a := range m.existing {
		if a.OccurrenceID == occurrenceID {
			count++
		}
	}
	return count, nil
}

func (m *mockPlanningStore) MoveAssignment(ctx context.Context, id string, newDate time.Time) error {
	m.movedTo[id] = newDate
	return nil
}

func (m *mockPlanningStore) CopyAssignment(ctx context.Context, id string, newDate time.Time) (string, error) {
	m.copiedFrom = append(m.copiedFrom, id)
	return id + "-copy", nil
}

func (m *mockPlanningStore) DeleteAssignment(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockPlanningStore) HasShiftCategory(ctx context.Context, name string) (bool, error) {
	return m.categories[name], nil
}

func (m *mockPlanningStore) CommitPlanning(ctx context.Context, run db.PlanningRun, occurrences []db.ShiftOccurrence, assignments []db.Assignment) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committedRun = &run
	m.committedOccurrences = occurrences
	m.committedAssignments = assignments
	return nil
}

func testTeam() []db.Engineer {
	ids := []string{"alice", "bob", "carol", "dave"}
	team := make([]db.Engineer, 0, len(ids))
	for _, id := range ids {
		team = append(team, db.Engineer{
			ID:     id,
			Name:   "Engineer " + id,
			Active: true,
			Skills: []string{"waakdienst", "incident"},
		})
	}
	return team
}

func testRequest(mode Mode) PlanningRequest {
	return PlanningRequest{
		TeamID:    "team-1",
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Weeks:     2,
		Algorithm: planner.AlgorithmBalanced,
		Mode:      mode,
	}
}

func TestGeneratePlanning_PreviewHasNoSideEffects(t *testing.T) {
	store := newMockStore(testTeam()...)

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), testRequest(ModePreview))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.Committed)
	assert.Nil(t, store.committedRun)
	assert.Empty(t, store.committedAssignments)

	// Two rotations, two weeks each, full coverage
	assert.Equal(t, 4, result.Summary.AssignedWeeks)
	assert.Equal(t, 4, result.Summary.TotalWeeks)
	assert.InDelta(t, 100.0, result.Summary.CoveragePct, 0.0001)
	assert.NotEmpty(t, result.Intents)
}

func TestGeneratePlanning_PreviewIsRepeatable(t *testing.T) {
	store := newMockStore(testTeam()...)

	first, err := GeneratePlanning(context.Background(), store, zap.NewNop(), testRequest(ModePreview))
	require.NoError(t, err)
	second, err := GeneratePlanning(context.Background(), store, zap.NewNop(), testRequest(ModePreview))
	require.NoError(t, err)

	require.Equal(t, len(first.Weeks), len(second.Weeks))
	for i := range first.Weeks {
		assert.Equal(t, first.Weeks[i].EngineerID, second.Weeks[i].EngineerID)
	}
}

func TestGeneratePlanning_WeekAnchors(t *testing.T) {
	store := newMockStore(testTeam()...)

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), testRequest(ModePreview))
	require.NoError(t, err)

	for _, w := range result.Weeks {
		switch w.Rotation {
		case planner.RotationWaakdienst:
			assert.Equal(t, time.Wednesday, w.WeekStart.Weekday())
		case planner.RotationIncident:
			assert.Equal(t, time.Monday, w.WeekStart.Weekday())
		}
	}
}

func TestGeneratePlanning_PrerequisiteFailureBlocksRun(t *testing.T) {
	// A single waakdienst-qualified engineer is below the minimum of two
	store := newMockStore(db.Engineer{
		ID: "alice", Name: "Alice", Active: true, Skills: []string{"waakdienst", "incident"},
	})

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), testRequest(ModeCommit))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.False(t, result.Committed)
	assert.Nil(t, store.committedRun)
	assert.Empty(t, result.Intents)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "waakdienst")
}

func TestGeneratePlanning_MissingShiftCategory(t *testing.T) {
	store := newMockStore(testTeam()...)
	store.categories["incident"] = false

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), testRequest(ModePreview))
	require.NoError(t, err)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "incident")
}

func TestGeneratePlanning_CommitPersistsEverything(t *testing.T) {
	store := newMockStore(testTeam()...)

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), testRequest(ModeCommit))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.Committed)
	assert.NotEmpty(t, result.RunID)

	require.NotNil(t, store.committedRun)
	assert.Equal(t, result.RunID, store.committedRun.ID)
	assert.Equal(t, len(result.Intents), len(store.committedAssignments))
	assert.Equal(t, len(result.Intents), len(store.committedOccurrences))

	// Every assignment references an occurrence from the same commit
	occurrenceIDs := make(map[string]bool)
	for _, occ := range store.committedOccurrences {
		occurrenceIDs[occ.ID] = true
	}
	for _, a := range store.committedAssignments {
		assert.True(t, occurrenceIDs[a.OccurrenceID])
		assert.Equal(t, planner.StatusConfirmed, a.Status)
	}
}

func TestGeneratePlanning_CommitFailureKeepsPreview(t *testing.T) {
	store := newMockStore(testTeam()...)
	store.commitErr = errors.New("connection reset")

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), testRequest(ModeCommit))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.False(t, result.Committed)
	assert.Empty(t, result.RunID)

	// The computed plan survives as a de-facto preview
	assert.NotEmpty(t, result.Intents)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[len(result.Errors)-1], "commit failed")
}

func TestGeneratePlanning_CustomAlgorithmRejected(t *testing.T) {
	store := newMockStore(testTeam()...)
	req := testRequest(ModePreview)
	req.Algorithm = planner.AlgorithmCustom

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), req)
	require.NoError(t, err)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "not supported")
}

func TestGeneratePlanning_InvalidWeeks(t *testing.T) {
	store := newMockStore(testTeam()...)
	req := testRequest(ModePreview)
	req.Weeks = 0

	_, err := GeneratePlanning(context.Background(), store, zap.NewNop(), req)
	assert.Error(t, err)
}

func TestGeneratePlanning_UnassignableWeeksDoNotFailRun(t *testing.T) {
	team := testTeam()
	// Everyone is on leave for the second half of the window
	for i := range team {
		team[i].Leave = []db.LeaveWindow{{
			Start: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		}}
	}
	store := newMockStore(team...)

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), testRequest(ModePreview))
	require.NoError(t, err)

	// The first incident week is still assignable, so the run succeeds
	// with partial coverage
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Unassigned)
	assert.Less(t, result.Summary.CoveragePct, 100.0)
}

func TestGeneratePlanning_StandbyRequested(t *testing.T) {
	store := newMockStore(testTeam()...)
	req := testRequest(ModePreview)
	req.IncludeStandby = true

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), req)
	require.NoError(t, err)

	for _, w := range result.Weeks {
		if w.Rotation == planner.RotationIncident {
			assert.NotEmpty(t, w.StandbyID)
			assert.NotEqual(t, w.EngineerID, w.StandbyID)
		}
	}
}
