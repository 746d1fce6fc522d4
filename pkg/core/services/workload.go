package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mvdbrink/teamplanner/pkg/core/planner"
	"github.com/mvdbrink/teamplanner/pkg/db"
)

// EngineerWorkload summarizes one engineer's year to date load and the
// headroom left under each rotation cap
type EngineerWorkload struct {
	EngineerID string
	Name       string

	WaakdienstWeeks     int
	WaakdienstRemaining int
	IncidentWeeks       int
	IncidentRemaining   int
	TotalHours          float64

	WaakdienstQualified bool
	IncidentQualified   bool
}

// WorkloadReport is the per-team workload summary
type WorkloadReport struct {
	TeamID    string
	Engineers []EngineerWorkload
}

// GetWorkloadSummary reports every team member's counters, sorted by
// waakdienst load descending so the busiest engineers come first
func GetWorkloadSummary(ctx context.Context, store db.RosterStore, logger *zap.Logger, teamID string) (*WorkloadReport, error) {
	team, err := store.GetTeamEngineers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team roster: %w", err)
	}

	report := &WorkloadReport{TeamID: teamID}
	for _, e := range team {
		report.Engineers = append(report.Engineers, EngineerWorkload{
			EngineerID:          e.ID,
			Name:                e.Name,
			WaakdienstWeeks:     e.YTDWaakdienstWeeks,
			WaakdienstRemaining: remaining(planner.RotationWaakdienst, e.YTDWaakdienstWeeks),
			IncidentWeeks:       e.YTDIncidentWeeks,
			IncidentRemaining:   remaining(planner.RotationIncident, e.YTDIncidentWeeks),
			TotalHours:          e.TotalHours,
			WaakdienstQualified: hasSkill(e, planner.RotationWaakdienst.SkillTag()),
			IncidentQualified:   hasSkill(e, planner.RotationIncident.SkillTag()),
		})
	}

	sort.SliceStable(report.Engineers, func(i, j int) bool {
		if report.Engineers[i].WaakdienstWeeks != report.Engineers[j].WaakdienstWeeks {
			return report.Engineers[i].WaakdienstWeeks > report.Engineers[j].WaakdienstWeeks
		}
		return report.Engineers[i].EngineerID < report.Engineers[j].EngineerID
	})

	logger.Info("workload summary built",
		zap.String("team", teamID),
		zap.Int("engineers", len(report.Engineers)))

	return report, nil
}

func remaining(rt planner.RotationType, used int) int {
	r := rt.AnnualCap() - used
	if r < 0 {
		return 0
	}
	return r
}
