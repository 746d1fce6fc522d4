package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvdbrink/teamplanner/pkg/core/planner"
	"github.com/mvdbrink/teamplanner/pkg/core/services"
)

const maxPlanningWeeks = 12

// PlanCmd creates the plan command
func PlanCmd(app *AppContext) *cobra.Command {
	var (
		startFlag     string
		weeksFlag     int
		algorithmFlag string
		commitFlag    bool
		standbyFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate rotation schedules for the configured team",
		Long: `Generate waakdienst and incident rotation schedules for the team.
Runs in preview mode unless --commit is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if startFlag != "" {
				parsed, err := time.Parse("2006-01-02", startFlag)
				if err != nil {
					return fmt.Errorf("start date must be YYYY-MM-DD: %w", err)
				}
				start = parsed
			}

			weeks := weeksFlag
			if weeks == 0 {
				weeks = app.Cfg.Planning.Weeks
			}
			if weeks < 1 || weeks > maxPlanningWeeks {
				return fmt.Errorf("weeks must be between 1 and %d, got %d", maxPlanningWeeks, weeks)
			}

			algorithm := algorithmFlag
			if algorithm == "" {
				algorithm = app.Cfg.Planning.Algorithm
			}

			mode := services.ModePreview
			if commitFlag {
				mode = services.ModeCommit
			}

			result, err := services.GeneratePlanning(app.Ctx, app.Store, app.Logger, services.PlanningRequest{
				TeamID:         app.Cfg.TeamID,
				StartDate:      start,
				Weeks:          weeks,
				Algorithm:      planner.Algorithm(algorithm),
				Mode:           mode,
				IncludeStandby: standbyFlag || app.Cfg.Planning.IncludeStandby,
			})
			if err != nil {
				return err
			}

			printPlanningResult(result)

			if !result.Success {
				return fmt.Errorf("planning run did not succeed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "Start date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().IntVar(&weeksFlag, "weeks", 0, "Number of weeks to plan (1-12)")
	cmd.Flags().StringVar(&algorithmFlag, "algorithm", "", "Allocation algorithm (balanced, sequential)")
	cmd.Flags().BoolVar(&commitFlag, "commit", false, "Persist the schedule instead of previewing")
	cmd.Flags().BoolVar(&standbyFlag, "standby", false, "Also assign incident standby engineers")

	return cmd
}

func printPlanningResult(result *services.PlanningResult) {
	if result.Mode == services.ModeCommit && result.Committed {
		fmt.Printf("\n✓ Schedule committed (run %s)\n\n", result.RunID)
	} else {
		fmt.Printf("\nSchedule preview (nothing persisted)\n\n")
	}

	if len(result.Weeks) > 0 {
		fmt.Println("Planned weeks:")
		for _, w := range result.Weeks {
			line := fmt.Sprintf("  %s  %-10s  %s", w.WeekStart.Format("2006-01-02"), w.Rotation, w.EngineerID)
			if w.StandbyID != "" {
				line += fmt.Sprintf("  (standby: %s)", w.StandbyID)
			}
			fmt.Println(line)
		}
		fmt.Println()
	}

	if len(result.Unassigned) > 0 {
		fmt.Printf("⚠ %d weeks could not be assigned:\n", len(result.Unassigned))
		for _, u := range result.Unassigned {
			fmt.Printf("  %s  %-10s  %s\n", u.WeekStart.Format("2006-01-02"), u.Rotation, u.Reason)
		}
		fmt.Println()
	}

	for _, w := range result.Warnings {
		fmt.Printf("⚠ %s\n", w)
	}

	fmt.Printf("\nCoverage: %d/%d weeks (%.1f%%)\n",
		result.Summary.AssignedWeeks, result.Summary.TotalWeeks, result.Summary.CoveragePct)
	for rotation, spread := range result.Summary.FairnessSpread {
		fmt.Printf("Fairness spread (%s): %.2f weeks\n", rotation, spread)
	}
}
