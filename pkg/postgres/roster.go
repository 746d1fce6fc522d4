package postgres

import (
	"context"
	"fmt"

	"github.com/mvdbrink/teamplanner/pkg/db"
)

const engineerColumns = `
	e.id, e.name, e.email, e.active,
	e.ytd_waakdienst_weeks, e.ytd_incident_weeks, e.total_hours,
	COALESCE(array_agg(s.skill) FILTER (WHERE s.skill IS NOT NULL), '{}')`

// GetQualifiedEngineers returns active team members holding the given
// skill, with all their skills, counters and approved leave joined
func (d *DB) GetQualifiedEngineers(ctx context.Context, teamID, skill string) ([]db.Engineer, error) {
	query := `
		SELECT` + engineerColumns + `
		FROM engineer e
		LEFT JOIN engineer_skill s ON s.engineer_id = e.id
		WHERE e.team_id = $1
		  AND e.active
		  AND EXISTS (
			SELECT 1 FROM engineer_skill q
			WHERE q.engineer_id = e.id AND q.skill = $2
		  )
		GROUP BY e.id
		ORDER BY e.id`

	engineers, err := d.queryEngineers(ctx, query, teamID, skill)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualified engineers: %w", err)
	}
	if err := d.attachLeave(ctx, engineers); err != nil {
		return nil, err
	}
	return engineers, nil
}

// GetTeamEngineers returns every active member of the team
func (d *DB) GetTeamEngineers(ctx context.Context, teamID string) ([]db.Engineer, error) {
	query := `
		SELECT` + engineerColumns + `
		FROM engineer e
		LEFT JOIN engineer_skill s ON s.engineer_id = e.id
		WHERE e.team_id = $1 AND e.active
		GROUP BY e.id
		ORDER BY e.id`

	engineers, err := d.queryEngineers(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team engineers: %w", err)
	}
	if err := d.attachLeave(ctx, engineers); err != nil {
		return nil, err
	}
	return engineers, nil
}

func (d *DB) queryEngineers(ctx context.Context, query string, args ...any) ([]db.Engineer, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var engineers []db.Engineer
	for rows.Next() {
		var e db.Engineer
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Active,
			&e.YTDWaakdienstWeeks, &e.YTDIncidentWeeks, &e.TotalHours, &e.Skills); err != nil {
			return nil, fmt.Errorf("failed to scan engineer row: %w", err)
		}
		engineers = append(engineers, e)
	}
	return engineers, rows.Err()
}

// attachLeave loads approved leave windows for the given engineers
func (d *DB) attachLeave(ctx context.Context, engineers []db.Engineer) error {
	if len(engineers) == 0 {
		return nil
	}

	ids := make([]string, 0, len(engineers))
	index := make(map[string]int, len(engineers))
	for i, e := range engineers {
		ids = append(ids, e.ID)
		index[e.ID] = i
	}

	rows, err := d.pool.Query(ctx, `
		SELECT engineer_id, start_date, end_date
		FROM leave_request
		WHERE engineer_id = ANY($1) AND status = 'approved'
		ORDER BY start_date`, ids)
	if err != nil {
		return fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var engineerID string
		var window db.LeaveWindow
		if err := rows.Scan(&engineerID, &window.Start, &window.End); err != nil {
			return fmt.Errorf("failed to scan leave row: %w", err)
		}
		if i, ok := index[engineerID]; ok {
			engineers[i].Leave = append(engineers[i].Leave, window)
		}
	}
	return rows.Err()
}
