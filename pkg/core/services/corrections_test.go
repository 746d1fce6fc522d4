package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mvdbrink/teamplanner/pkg/db"
)

func storeWithAssignment() *mockPlanningStore {
	store := newMockStore(testTeam()...)
	store.existing = []db.Assignment{{
		ID:           "a-1",
		OccurrenceID: "occ-1",
		EngineerID:   "alice",
		TeamID:       "team-1",
		Category:     "incident",
		Role:         "primary",
		Status:       "confirmed",
		Date:         time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Start:        time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 1, 6, 17, 0, 0, 0, time.UTC),
	}}
	return store
}

func TestMoveShift_ValidTarget(t *testing.T) {
	store := storeWithAssignment()
	target := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

	err := MoveShift(context.Background(), store, zap.NewNop(), "a-1", target)
	require.NoError(t, err)
	assert.Equal(t, target, store.movedTo["a-1"])
}

func TestMoveShift_BlockedByLeave(t *testing.T) {
	store := storeWithAssignment()
	target := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	for i := range store.engineers {
		if store.engineers[i].ID == "alice" {
			store.engineers[i].Leave = []db.LeaveWindow{{Start: target, End: target}}
		}
	}

	err := MoveShift(context.Background(), store, zap.NewNop(), "a-1", target)
	require.Error(t, err)

	var conflict *ErrShiftConflict
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Conflicts[0], "leave")
	assert.Empty(t, store.movedTo)
}

func TestMoveShift_BlockedByOverlap(t *testing.T) {
	store := storeWithAssignment()
	clash := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	store.existing = append(store.existing, db.Assignment{
		ID: "a-2", OccurrenceID: "occ-2", EngineerID: "alice", TeamID: "team-1",
		Category: "waakdienst", Role: "primary", Status: "confirmed", Date: clash,
	})

	err := MoveShift(context.Background(), store, zap.NewNop(), "a-1", clash)
	require.Error(t, err)

	var conflict *ErrShiftConflict
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Conflicts[0], "already assigned")
}

func TestMoveShift_UnknownAssignment(t *testing.T) {
	store := storeWithAssignment()

	err := MoveShift(context.Background(), store, zap.NewNop(), "nope", time.Now())
	assert.Error(t, err)
}

func TestCopyShift_ReturnsNewID(t *testing.T) {
	store := storeWithAssignment()
	target := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

	newID, err := CopyShift(context.Background(), store, zap.NewNop(), "a-1", target)
	require.NoError(t, err)
	assert.Equal(t, "a-1-copy", newID)
	assert.Equal(t, []string{"a-1"}, store.copiedFrom)
}

func TestCopyShift_BlockedByGap(t *testing.T) {
	store := storeWithAssignment()
	// Move the source to Friday so the following Tuesday lands in a
	// different incident week only four days out, inside the 7 day gap
	store.existing[0].Date = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	target := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)

	_, err := CopyShift(context.Background(), store, zap.NewNop(), "a-1", target)
	require.Error(t, err)

	var conflict *ErrShiftConflict
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Conflicts[0], "gap")
}

func TestRemoveShift_Deletes(t *testing.T) {
	store := storeWithAssignment()

	err := RemoveShift(context.Background(), store, zap.NewNop(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a-1"}, store.deleted)
}
