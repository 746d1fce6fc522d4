package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEngineer(id string, ytdWaakdienst int) *Engineer {
	return &Engineer{
		ID:                 id,
		Name:               "Engineer " + id,
		Skills:             []string{"waakdienst", "incident"},
		YTDWaakdienstWeeks: ytdWaakdienst,
	}
}

func TestRank_PrefersLowestYTD(t *testing.T) {
	pool := []*Engineer{
		testEngineer("alice", 5),
		testEngineer("bob", 1),
		testEngineer("carol", 3),
	}
	scorer := NewScorer(RotationWaakdienst, pool, nil, zap.NewNop())

	ranked := scorer.Rank(pool, time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), NewSession())

	require.Len(t, ranked, 3)
	assert.Equal(t, "bob", ranked[0].Engineer.ID)
	assert.Equal(t, "carol", ranked[1].Engineer.ID)
	assert.Equal(t, "alice", ranked[2].Engineer.ID)
}

func TestRank_TieBreaksOnID(t *testing.T) {
	pool := []*Engineer{
		testEngineer("zoe", 2),
		testEngineer("adam", 2),
	}
	scorer := NewScorer(RotationWaakdienst, pool, nil, zap.NewNop())

	ranked := scorer.Rank(pool, time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), NewSession())
	assert.Equal(t, "adam", ranked[0].Engineer.ID)
}

func TestScore_SessionPenaltyEscalates(t *testing.T) {
	alice := testEngineer("alice", 0)
	bob := testEngineer("bob", 0)
	pool := []*Engineer{alice, bob}
	scorer := NewScorer(RotationWaakdienst, pool, nil, zap.NewNop())

	week1 := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)

	session := NewSession()
	session.RecordWeek(RotationWaakdienst, "alice", week1, RolePrimary, nil)

	// Alice now carries both the deviation and the session penalty
	aliceScore := scorer.Score(alice, week2, session)
	bobScore := scorer.Score(bob, week2, session)
	assert.Greater(t, aliceScore, bobScore)

	// Deviation difference 1.0, session penalty 1.5, recency difference
	// 0.9 (alice just worked, bob has the full idle bonus)
	assert.InDelta(t, 3.4, aliceScore-bobScore, 0.0001)
}

func TestScore_RecencyBonusFavorsLongIdle(t *testing.T) {
	alice := testEngineer("alice", 2)
	bob := testEngineer("bob", 2)
	pool := []*Engineer{alice, bob}

	week := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	history := []ExistingAssignment{
		// Alice worked last week, bob worked eight weeks ago
		{EngineerID: "alice", Rotation: RotationWaakdienst, Role: RolePrimary, Status: StatusConfirmed, Date: week.AddDate(0, 0, -7)},
		{EngineerID: "bob", Rotation: RotationWaakdienst, Role: RolePrimary, Status: StatusConfirmed, Date: week.AddDate(0, 0, -56)},
	}
	scorer := NewScorer(RotationWaakdienst, pool, history, zap.NewNop())

	session := NewSession()
	assert.Less(t, scorer.Score(bob, week, session), scorer.Score(alice, week, session))
}

func TestScore_RecencyBonusCapped(t *testing.T) {
	alice := testEngineer("alice", 0)
	bob := testEngineer("bob", 0)
	pool := []*Engineer{alice, bob}

	week := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	history := []ExistingAssignment{
		// Twenty weeks back, far beyond the ten week cap
		{EngineerID: "alice", Rotation: RotationWaakdienst, Role: RolePrimary, Status: StatusConfirmed, Date: week.AddDate(0, 0, -140)},
	}
	scorer := NewScorer(RotationWaakdienst, pool, history, zap.NewNop())

	session := NewSession()
	// Bob has no history at all and gets the same capped bonus
	assert.InDelta(t, scorer.Score(alice, week, session), scorer.Score(bob, week, session), 0.0001)
}

func TestScore_IgnoresCancelledHistory(t *testing.T) {
	alice := testEngineer("alice", 0)
	pool := []*Engineer{alice}

	week := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	cancelled := []ExistingAssignment{
		{EngineerID: "alice", Rotation: RotationWaakdienst, Role: RolePrimary, Status: StatusCancelled, Date: week.AddDate(0, 0, -7)},
	}

	withCancelled := NewScorer(RotationWaakdienst, pool, cancelled, zap.NewNop())
	without := NewScorer(RotationWaakdienst, pool, nil, zap.NewNop())

	session := NewSession()
	assert.Equal(t, without.Score(alice, week, session), withCancelled.Score(alice, week, session))
}

func TestSpread_MeasuresMaxDeviation(t *testing.T) {
	pool := []*Engineer{
		testEngineer("alice", 6),
		testEngineer("bob", 2),
		testEngineer("carol", 1),
	}
	scorer := NewScorer(RotationWaakdienst, pool, nil, zap.NewNop())

	// Average is 3, alice deviates by 3
	assert.InDelta(t, 3.0, scorer.Spread(NewSession()), 0.0001)
}
