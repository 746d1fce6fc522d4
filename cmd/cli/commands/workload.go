package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvdbrink/teamplanner/pkg/core/services"
)

// WorkloadCmd creates the workload command
func WorkloadCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "workload",
		Short: "Show year to date rotation load per engineer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := services.GetWorkloadSummary(app.Ctx, app.Store, app.Logger, app.Cfg.TeamID)
			if err != nil {
				return err
			}

			fmt.Printf("\nWorkload for team %s (%d engineers):\n\n", report.TeamID, len(report.Engineers))
			fmt.Printf("  %-25s %-18s %-18s %s\n", "Engineer", "Waakdienst", "Incident", "Hours")
			for _, e := range report.Engineers {
				fmt.Printf("  %-25s %2d used / %2d left  %2d used / %2d left  %.0f\n",
					e.Name,
					e.WaakdienstWeeks, e.WaakdienstRemaining,
					e.IncidentWeeks, e.IncidentRemaining,
					e.TotalHours)
			}
			fmt.Println()
			return nil
		},
	}
}
