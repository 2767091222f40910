package fittrack

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Manage your custom exercise library",
}

var (
	exerciseMuscleGroup string
	exerciseEquipment   string
	exerciseNotes       string
	exerciseListGroup   string
)

var exerciseAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a custom exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			item, err := service.CreateCustomExercise(sqldb, service.CustomExerciseInput{
				Name:        args[0],
				MuscleGroup: exerciseMuscleGroup,
				Equipment:   exerciseEquipment,
				Notes:       exerciseNotes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added custom exercise %d (%s)\n", item.ID, item.Ref)
			return printUsageWarning(cmd, sqldb, service.FeatureCustomExercises, service.CountCustomExercises)
		})
	},
}

var exerciseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListCustomExercises(sqldb, exerciseListGroup)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tREF\tNAME\tMUSCLE_GROUP\tEQUIPMENT\tNOTES")
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\t%s\n", item.ID, item.Ref, item.Name, item.MuscleGroup, item.Equipment, item.Notes)
			}
			return nil
		})
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:   "delete <id|ref>",
	Short: "Delete a custom exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteCustomExercise(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted custom exercise %s\n", args[0])
			return nil
		})
	},
}

// printUsageWarning shows the gate's advisory message once usage nears the limit.
func printUsageWarning(cmd *cobra.Command, sqldb *sql.DB, f service.Feature, count func(*sql.DB) (int, error)) error {
	tier, err := service.CurrentTier(sqldb)
	if err != nil {
		return err
	}
	n, err := count(sqldb)
	if err != nil {
		return err
	}
	if st := service.CheckUsage(tier, f, n); st.Message != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), st.Message)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exerciseCmd)
	exerciseCmd.AddCommand(exerciseAddCmd, exerciseListCmd, exerciseDeleteCmd)

	exerciseAddCmd.Flags().StringVar(&exerciseMuscleGroup, "muscle-group", "", "Primary muscle group")
	exerciseAddCmd.Flags().StringVar(&exerciseEquipment, "equipment", "", "Equipment used")
	exerciseAddCmd.Flags().StringVar(&exerciseNotes, "notes", "", "Notes")
	exerciseListCmd.Flags().StringVar(&exerciseListGroup, "muscle-group", "", "Filter by muscle group")
}
