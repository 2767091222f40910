package fittrack

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/fittrack-cli/internal/model"
	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Daily calorie and macro targets (pro and premium)",
}

var (
	goalTargets  service.BaseNutrition
	goalDate     string
	goalJSON     bool
	goalProgDate string
)

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set targets from an effective date onward",
	RunE: func(cmd *cobra.Command, args []string) error {
		effective := goalDate
		if effective == "" {
			effective = time.Now().Format("2006-01-02")
		}
		return withDB(func(sqldb *sql.DB) error {
			err := service.SetGoal(sqldb, service.SetGoalInput{
				Calories:      goalTargets.Calories,
				ProteinG:      goalTargets.ProteinG,
				CarbsG:        goalTargets.CarbsG,
				FatG:          goalTargets.FatG,
				EffectiveDate: effective,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goal set from %s: %.0f kcal | P %.1fg | C %.1fg | F %.1fg\n",
				effective, goalTargets.Calories, goalTargets.ProteinG, goalTargets.CarbsG, goalTargets.FatG)
			return nil
		})
	},
}

var goalCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the goal in effect on a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			goal, err := service.CurrentGoal(sqldb, goalDate)
			if err != nil {
				return err
			}
			if goalJSON {
				return printJSON(cmd, goal)
			}
			if goal == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No goal configured")
				return nil
			}
			printGoalRows(cmd, []model.Goal{*goal})
			return nil
		})
	},
}

var goalHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List every goal, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			goals, err := service.GoalHistory(sqldb)
			if err != nil {
				return err
			}
			if goalJSON {
				return printJSON(cmd, goals)
			}
			printGoalRows(cmd, goals)
			return nil
		})
	},
}

var goalProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Compare a day's intake with its goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDateTimeOrNow(goalProgDate, "")
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.DailyGoalProgress(sqldb, day)
			if err != nil {
				return err
			}
			if goalJSON {
				return printJSON(cmd, p)
			}
			if p == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No goal configured")
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", p.Date)
			fmt.Fprintln(out, "MACRO\tEATEN\tGOAL\tLEFT\tPCT")
			fmt.Fprintf(out, "kcal\t%.0f\t%.0f\t%.0f\t%.1f%%\n", p.Intake.Calories, p.Goal.Calories, p.Remaining.Calories, p.CaloriesPct)
			fmt.Fprintf(out, "protein\t%.1f\t%.1f\t%.1f\t%.1f%%\n", p.Intake.ProteinG, p.Goal.ProteinG, p.Remaining.ProteinG, p.ProteinPct)
			fmt.Fprintf(out, "carbs\t%.1f\t%.1f\t%.1f\t%.1f%%\n", p.Intake.CarbsG, p.Goal.CarbsG, p.Remaining.CarbsG, p.CarbsPct)
			fmt.Fprintf(out, "fat\t%.1f\t%.1f\t%.1f\t%.1f%%\n", p.Intake.FatG, p.Goal.FatG, p.Remaining.FatG, p.FatPct)
			return nil
		})
	},
}

func printGoalRows(cmd *cobra.Command, goals []model.Goal) {
	fmt.Fprintln(cmd.OutOrStdout(), "EFFECTIVE\tKCAL\tP\tC\tF")
	for _, g := range goals {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.0f\t%.1f\t%.1f\t%.1f\n", g.EffectiveDate, g.Calories, g.ProteinG, g.CarbsG, g.FatG)
	}
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalSetCmd, goalCurrentCmd, goalHistoryCmd, goalProgressCmd)
	goalCmd.PersistentFlags().BoolVar(&goalJSON, "json", false, "Output JSON")

	goalSetCmd.Flags().Float64Var(&goalTargets.Calories, "calories", 0, "Daily calorie target")
	goalSetCmd.Flags().Float64Var(&goalTargets.ProteinG, "protein", 0, "Daily protein grams")
	goalSetCmd.Flags().Float64Var(&goalTargets.CarbsG, "carbs", 0, "Daily carbs grams")
	goalSetCmd.Flags().Float64Var(&goalTargets.FatG, "fat", 0, "Daily fat grams")
	goalSetCmd.Flags().StringVar(&goalDate, "effective-date", "", "First day the goal applies, YYYY-MM-DD (default today)")
	_ = goalSetCmd.MarkFlagRequired("calories")

	goalCurrentCmd.Flags().StringVar(&goalDate, "date", "", "Resolve the goal at YYYY-MM-DD (default today)")
	goalProgressCmd.Flags().StringVar(&goalProgDate, "date", "", "Day to report, YYYY-MM-DD (default today)")
}
