package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvdbrink/teamplanner/pkg/core/services"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the team meets the prerequisites for planning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ValidatePrerequisites(app.Ctx, app.Store, app.Logger, app.Cfg.TeamID)
			if err != nil {
				return err
			}

			fmt.Printf("\nTeam size:            %d\n", result.TeamSize)
			fmt.Printf("Waakdienst qualified: %d\n", result.WaakdienstQualified)
			fmt.Printf("Incident qualified:   %d\n\n", result.IncidentQualified)

			for _, w := range result.Warnings {
				fmt.Printf("⚠ %s\n", w)
			}
			for _, e := range result.Errors {
				fmt.Printf("✗ %s\n", e)
			}

			if !result.Success {
				return fmt.Errorf("team is not ready for planning")
			}
			fmt.Println("✓ Team is ready for planning")
			return nil
		},
	}
}
