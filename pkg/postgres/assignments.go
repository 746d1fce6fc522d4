package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mvdbrink/teamplanner/pkg/db"
)

// ErrAssignmentNotFound is returned when an assignment id does not exist
var ErrAssignmentNotFound = errors.New("assignment not found")

const assignmentColumns = `
	id, occurrence_id, engineer_id, team_id, category, role, status,
	shift_date, start_at, end_at, created_at, updated_at`

// GetExistingAssignments returns all countable assignments for a team in
// the half-open window [from, to). Cancelled and declined rows are left
// out since they never block planning.
func (d *DB) GetExistingAssignments(ctx context.Context, teamID string, from, to time.Time) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT`+assignmentColumns+`
		FROM assignment
		WHERE team_id = $1
		  AND shift_date >= $2 AND shift_date < $3
		  AND status NOT IN ('cancelled', 'declined')
		ORDER BY shift_date, id`, teamID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// GetAssignment fetches a single assignment by id
func (d *DB) GetAssignment(ctx context.Context, id string) (*db.Assignment, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT`+assignmentColumns+`
		FROM assignment WHERE id = $1`, id)

	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CountOccupants returns how many non-cancelled assignments an occurrence
// currently has
func (d *DB) CountOccupants(ctx context.Context, occurrenceID string) (int, error) {
	var count int
	err := d.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM assignment
		WHERE occurrence_id = $1 AND status <> 'cancelled'`, occurrenceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count occupants: %w", err)
	}
	return count, nil
}

// MoveAssignment shifts one assignment and its occurrence to a new date,
// keeping the time of day intact
func (d *DB) MoveAssignment(ctx context.Context, id string, newDate time.Time) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	assignment, err := lockAssignment(ctx, tx, id)
	if err != nil {
		return err
	}

	delta := newDate.Sub(truncateToDay(assignment.Date))

	var occupants int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM assignment
		WHERE occurrence_id = $1 AND status <> 'cancelled'`,
		assignment.OccurrenceID).Scan(&occupants)
	if err != nil {
		return fmt.Errorf("failed to count occupants: %w", err)
	}

	if occupants <= 1 {
		// Sole occupant: the occurrence moves along with the assignment
		_, err = tx.Exec(ctx, `
			UPDATE shift_occurrence
			SET shift_date = $2, start_at = start_at + $3, end_at = end_at + $3
			WHERE id = $1`, assignment.OccurrenceID, newDate, delta)
		if err != nil {
			return fmt.Errorf("failed to move occurrence: %w", err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE assignment
			SET shift_date = $2, start_at = start_at + $3, end_at = end_at + $3,
			    updated_at = NOW()
			WHERE id = $1`, id, newDate, delta)
		if err != nil {
			return fmt.Errorf("failed to move assignment: %w", err)
		}
		return tx.Commit(ctx)
	}

	// Shared occurrence: detach into a fresh occurrence on the new date
	newOccurrence := uuid.New().String()
	_, err = tx.Exec(ctx, `
		INSERT INTO shift_occurrence (id, team_id, category, shift_date, start_at, end_at, required_staff, status)
		SELECT $1, team_id, category, $3, start_at + $4, end_at + $4, 1, status
		FROM shift_occurrence WHERE id = $2`,
		newOccurrence, assignment.OccurrenceID, newDate, delta)
	if err != nil {
		return fmt.Errorf("failed to create occurrence for moved assignment: %w", err)
	}
	_, err = tx.Exec(ctx, `
		UPDATE assignment
		SET occurrence_id = $2, shift_date = $3,
		    start_at = start_at + $4, end_at = end_at + $4, updated_at = NOW()
		WHERE id = $1`, id, newOccurrence, newDate, delta)
	if err != nil {
		return fmt.Errorf("failed to move assignment: %w", err)
	}
	return tx.Commit(ctx)
}

// CopyAssignment duplicates an assignment and its occurrence onto a new
// date and returns the new assignment id
func (d *DB) CopyAssignment(ctx context.Context, id string, newDate time.Time) (string, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	assignment, err := lockAssignment(ctx, tx, id)
	if err != nil {
		return "", err
	}

	delta := newDate.Sub(truncateToDay(assignment.Date))
	newOccurrence := uuid.New().String()
	newAssignment := uuid.New().String()

	_, err = tx.Exec(ctx, `
		INSERT INTO shift_occurrence (id, team_id, category, shift_date, start_at, end_at, required_staff, status)
		SELECT $1, team_id, category, $3, start_at + $4, end_at + $4, required_staff, status
		FROM shift_occurrence WHERE id = $2`,
		newOccurrence, assignment.OccurrenceID, newDate, delta)
	if err != nil {
		return "", fmt.Errorf("failed to copy occurrence: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO assignment (id, occurrence_id, engineer_id, team_id, category, role, status,
			shift_date, start_at, end_at, created_at, updated_at)
		SELECT $1, $2, engineer_id, team_id, category, role, status,
			$4, start_at + $5, end_at + $5, NOW(), NOW()
		FROM assignment WHERE id = $3`,
		newAssignment, newOccurrence, id, newDate, delta)
	if err != nil {
		return "", fmt.Errorf("failed to copy assignment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return newAssignment, nil
}

// DeleteAssignment removes one assignment and drops its occurrence when
// no other occupants remain
func (d *DB) DeleteAssignment(ctx context.Context, id string) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	assignment, err := lockAssignment(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM assignment WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM shift_occurrence
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM assignment WHERE occurrence_id = $1)`,
		assignment.OccurrenceID)
	if err != nil {
		return fmt.Errorf("failed to clean up orphaned occurrence: %w", err)
	}

	return tx.Commit(ctx)
}

func lockAssignment(ctx context.Context, tx pgx.Tx, id string) (db.Assignment, error) {
	row := tx.QueryRow(ctx, `
		SELECT`+assignmentColumns+`
		FROM assignment WHERE id = $1 FOR UPDATE`, id)

	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, ErrAssignmentNotFound
	}
	return a, err
}

func scanAssignment(row pgx.Row) (db.Assignment, error) {
	var a db.Assignment
	err := row.Scan(&a.ID, &a.OccurrenceID, &a.EngineerID, &a.TeamID, &a.Category,
		&a.Role, &a.Status, &a.Date, &a.Start, &a.End, &a.CreatedAt, &a.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return a, fmt.Errorf("failed to scan assignment row: %w", err)
	}
	return a, err
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
