package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvdbrink/teamplanner/pkg/core/services"
)

// MoveAssignmentCmd creates the moveAssignment command
func MoveAssignmentCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "moveAssignment <assignment_id> <new_date>",
		Short: "Move an assignment to a new date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			newDate, err := parseDate(args[1])
			if err != nil {
				return err
			}

			if err := services.MoveShift(app.Ctx, app.Store, app.Logger, args[0], newDate); err != nil {
				return err
			}

			fmt.Printf("✓ Assignment %s moved to %s\n", args[0], newDate.Format("2006-01-02"))
			return nil
		},
	}
}

// CopyAssignmentCmd creates the copyAssignment command
func CopyAssignmentCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "copyAssignment <assignment_id> <new_date>",
		Short: "Duplicate an assignment onto a new date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			newDate, err := parseDate(args[1])
			if err != nil {
				return err
			}

			newID, err := services.CopyShift(app.Ctx, app.Store, app.Logger, args[0], newDate)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Assignment copied to %s as %s\n", newDate.Format("2006-01-02"), newID)
			return nil
		},
	}
}

// DeleteAssignmentCmd creates the deleteAssignment command
func DeleteAssignmentCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteAssignment <assignment_id>",
		Short: "Delete an assignment, dropping its shift if left empty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.RemoveShift(app.Ctx, app.Store, app.Logger, args[0]); err != nil {
				return err
			}

			fmt.Printf("✓ Assignment %s deleted\n", args[0])
			return nil
		},
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}
