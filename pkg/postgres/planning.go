package postgres

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mvdbrink/teamplanner/pkg/core/planner"
	"github.com/mvdbrink/teamplanner/pkg/db"
)

// HasShiftCategory reports whether a shift category is configured
func (d *DB) HasShiftCategory(ctx context.Context, name string) (bool, error) {
	var found bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shift_category WHERE name = $1)`, name).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to look up shift category: %w", err)
	}
	return found, nil
}

// CommitPlanning persists one planning run atomically: every occurrence,
// every assignment, one YTD counter increment per distinct
// (engineer, category, week) and the audit row, all in one transaction.
// A transaction scoped advisory lock on the team id serializes concurrent
// commits for the same team.
func (d *DB) CommitPlanning(ctx context.Context, run db.PlanningRun, occurrences []db.ShiftOccurrence, assignments []db.Assignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, teamLockKey(run.TeamID)); err != nil {
		return fmt.Errorf("failed to acquire team planning lock: %w", err)
	}

	for _, occ := range occurrences {
		_, err := tx.Exec(ctx, `
			INSERT INTO shift_occurrence (id, team_id, category, shift_date, start_at, end_at, required_staff, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			occ.ID, occ.TeamID, occ.Category, occ.Date, occ.Start, occ.End, occ.RequiredStaff, occ.Status)
		if err != nil {
			return fmt.Errorf("failed to insert occurrence %s: %w", occ.ID, err)
		}
	}

	for _, a := range assignments {
		_, err := tx.Exec(ctx, `
			INSERT INTO assignment (id, occurrence_id, engineer_id, team_id, category, role, status,
				shift_date, start_at, end_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			a.ID, a.OccurrenceID, a.EngineerID, a.TeamID, a.Category, a.Role, a.Status,
			a.Date, a.Start, a.End, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert assignment %s: %w", a.ID, err)
		}
	}

	if err := incrementCounters(ctx, tx, assignments); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO planning_run (id, team_id, start_date, weeks, algorithm, mode,
			total_weeks, assigned_weeks, unassigned_weeks, coverage_pct, success, errors, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.ID, run.TeamID, run.StartDate, run.Weeks, run.Algorithm, run.Mode,
		run.TotalWeeks, run.AssignedWeeks, run.UnassignedWeeks, run.CoveragePct,
		run.Success, run.Errors, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert planning run: %w", err)
	}

	return tx.Commit(ctx)
}

type counterKey struct {
	engineerID string
	category   string
	week       string
}

// incrementCounters advances each engineer's YTD week counter and total
// hours. A week of segments counts once; standby assignments add hours
// but never advance the week counters.
func incrementCounters(ctx context.Context, tx pgx.Tx, assignments []db.Assignment) error {
	weeks := make(map[counterKey]bool)
	hours := make(map[string]float64)

	for _, a := range assignments {
		hours[a.EngineerID] += a.End.Sub(a.Start).Hours()
		if a.Role != "primary" {
			continue
		}
		// Keyed by rotation week start so one planned week maps to one
		// increment even though it spans a dozen occurrences
		week := rotationWeekStart(a).Format("2006-01-02")
		weeks[counterKey{a.EngineerID, a.Category, week}] = true
	}

	for key := range weeks {
		column := "ytd_incident_weeks"
		if key.category == "waakdienst" {
			column = "ytd_waakdienst_weeks"
		}
		_, err := tx.Exec(ctx, fmt.Sprintf(
			`UPDATE engineer SET %s = %s + 1 WHERE id = $1`, column, column), key.engineerID)
		if err != nil {
			return fmt.Errorf("failed to increment %s for engineer %s: %w", column, key.engineerID, err)
		}
	}

	for engineerID, h := range hours {
		_, err := tx.Exec(ctx,
			`UPDATE engineer SET total_hours = total_hours + $2 WHERE id = $1`, engineerID, h)
		if err != nil {
			return fmt.Errorf("failed to add hours for engineer %s: %w", engineerID, err)
		}
	}
	return nil
}

// rotationWeekStart resolves the week an occurrence belongs to. The
// trailing waakdienst segment falls on the next Wednesday morning but
// still counts toward the week that started on the previous Wednesday.
func rotationWeekStart(a db.Assignment) time.Time {
	rt := planner.RotationType(a.Category)
	ws := planner.WeekStartOf(a.Date, rt.Anchor())
	if rt == planner.RotationWaakdienst &&
		a.Date.Weekday() == planner.WaakdienstAnchor &&
		a.Start.Hour() < planner.BusinessEndHour {
		ws = ws.AddDate(0, 0, -7)
	}
	return ws
}

// teamLockKey folds a team id into the bigint keyspace of
// pg_advisory_xact_lock
func teamLockKey(teamID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(teamID))
	return int64(h.Sum64())
}
