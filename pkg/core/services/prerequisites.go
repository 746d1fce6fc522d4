package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mvdbrink/teamplanner/pkg/core/planner"
	"github.com/mvdbrink/teamplanner/pkg/db"
)

const (
	minWaakdienstQualified = 2
	minIncidentQualified   = 1
)

// ValidationResult reports whether a team is ready to be planned.
// Errors block planning entirely, warnings do not.
type ValidationResult struct {
	Success  bool
	Errors   []string
	Warnings []string

	WaakdienstQualified int
	IncidentQualified   int
	TeamSize            int
}

// ValidatePrerequisites checks that the team's shift categories exist and
// that enough qualified engineers are available for each rotation
func ValidatePrerequisites(ctx context.Context, store db.PlanningStore, logger *zap.Logger, teamID string) (*ValidationResult, error) {
	result := &ValidationResult{}

	for _, rt := range []planner.RotationType{planner.RotationWaakdienst, planner.RotationIncident} {
		found, err := store.HasShiftCategory(ctx, rt.String())
		if err != nil {
			return nil, fmt.Errorf("failed to look up shift category %s: %w", rt, err)
		}
		if !found {
			result.Errors = append(result.Errors, fmt.Sprintf("shift category %s is not configured", rt))
		}
	}

	team, err := store.GetTeamEngineers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team roster: %w", err)
	}
	result.TeamSize = len(team)

	var unqualified []string
	for _, e := range team {
		waakdienst := hasSkill(e, planner.RotationWaakdienst.SkillTag())
		incident := hasSkill(e, planner.RotationIncident.SkillTag())
		if waakdienst {
			result.WaakdienstQualified++
		}
		if incident {
			result.IncidentQualified++
		}
		if !waakdienst && !incident {
			unqualified = append(unqualified, e.Name)
		}
	}

	if result.WaakdienstQualified < minWaakdienstQualified {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"need at least %d waakdienst qualified engineers, team has %d",
			minWaakdienstQualified, result.WaakdienstQualified))
	}
	if result.IncidentQualified < minIncidentQualified {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"need at least %d incident qualified engineer, team has %d",
			minIncidentQualified, result.IncidentQualified))
	}

	// List the first few unqualified engineers by name, summarize the rest
	for i, name := range unqualified {
		if i == 3 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%d more engineers hold no rotation skill", len(unqualified)-3))
			break
		}
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"engineer %s holds no rotation skill and will never be scheduled", name))
	}

	result.Success = len(result.Errors) == 0

	logger.Info("prerequisite validation finished",
		zap.String("team", teamID),
		zap.Bool("success", result.Success),
		zap.Int("waakdienst_qualified", result.WaakdienstQualified),
		zap.Int("incident_qualified", result.IncidentQualified),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

func hasSkill(e db.Engineer, tag string) bool {
	for _, s := range e.Skills {
		if s == tag {
			return true
		}
	}
	return false
}
