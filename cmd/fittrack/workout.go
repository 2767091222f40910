package fittrack

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var workoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Log performed exercises",
}

var (
	workoutSets     int
	workoutReps     int
	workoutWeight   float64
	workoutDuration int
	workoutDate     string
	workoutTime     string
	workoutNotes    string
)

var workoutAddCmd = &cobra.Command{
	Use:   "add <exercise>",
	Short: "Log a workout; names from your exercise library are linked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		performedAt, err := parseDateTimeOrNow(workoutDate, workoutTime)
		if err != nil {
			return err
		}
		in := service.WorkoutInput{
			Exercise:    args[0],
			Sets:        workoutSets,
			Reps:        workoutReps,
			WeightKg:    workoutWeight,
			DurationMin: workoutDuration,
			PerformedAt: performedAt,
			Notes:       workoutNotes,
		}
		return withDB(func(sqldb *sql.DB) error {
			item, err := service.LogWorkout(sqldb, in)
			if err != nil {
				return err
			}
			linked := ""
			if item.CustomExerciseID != nil {
				linked = " (custom exercise)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged workout %d: %s%s\n", item.ID, item.ExerciseName, linked)
			return nil
		})
	},
}

var (
	workoutListDate string
	workoutFromDate string
	workoutToDate   string
	workoutLimit    int
)

var workoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := service.ListWorkoutsFilter{
			Date:     workoutListDate,
			FromDate: workoutFromDate,
			ToDate:   workoutToDate,
			Limit:    workoutLimit,
		}
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListWorkouts(sqldb, filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tEXERCISE\tSETS\tREPS\tKG\tMIN")
			for _, w := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\t%d\t%g\t%d\n",
					w.ID, w.PerformedAt.Local().Format("2006-01-02 15:04"), w.ExerciseName, w.Sets, w.Reps, w.WeightKg, w.DurationMin)
			}
			return nil
		})
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a workout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("workout id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteWorkout(sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted workout %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(workoutCmd)
	workoutCmd.AddCommand(workoutAddCmd, workoutListCmd, workoutDeleteCmd)

	workoutAddCmd.Flags().IntVar(&workoutSets, "sets", 0, "Sets performed")
	workoutAddCmd.Flags().IntVar(&workoutReps, "reps", 0, "Reps per set")
	workoutAddCmd.Flags().Float64Var(&workoutWeight, "weight", 0, "Load in kg")
	workoutAddCmd.Flags().IntVar(&workoutDuration, "duration", 0, "Duration in minutes")
	workoutAddCmd.Flags().StringVar(&workoutDate, "date", "", "Date YYYY-MM-DD (default now)")
	workoutAddCmd.Flags().StringVar(&workoutTime, "time", "", "Time HH:MM")
	workoutAddCmd.Flags().StringVar(&workoutNotes, "notes", "", "Notes")

	workoutListCmd.Flags().StringVar(&workoutListDate, "date", "", "Filter by date YYYY-MM-DD")
	workoutListCmd.Flags().StringVar(&workoutFromDate, "from", "", "Filter from date YYYY-MM-DD")
	workoutListCmd.Flags().StringVar(&workoutToDate, "to", "", "Filter to date YYYY-MM-DD")
	workoutListCmd.Flags().IntVar(&workoutLimit, "limit", 50, "Max rows")
}
