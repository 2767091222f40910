package fittrack

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var todayDate string

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's logged intake",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := time.Now()
		if todayDate != "" {
			parsed, err := time.ParseInLocation("2006-01-02", todayDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", todayDate)
			}
			target = parsed
		}
		return withDB(func(sqldb *sql.DB) error {
			summary, err := service.DailyTotals(sqldb, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Date: %s\n", summary.Date)
			fmt.Fprintf(cmd.OutOrStdout(), "Entries: %d\n", summary.Entries)
			fmt.Fprintf(cmd.OutOrStdout(), "Intake: %.0f kcal\n", summary.Nutrition.Calories)
			fmt.Fprintf(cmd.OutOrStdout(), "Macros: P %.1fg | C %.1fg | F %.1fg\n", summary.Nutrition.ProteinG, summary.Nutrition.CarbsG, summary.Nutrition.FatG)

			progress, err := service.DailyGoalProgress(sqldb, target)
			if errors.Is(err, service.ErrFeatureUnavailable) || (err == nil && progress == nil) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goal: %.0f kcal (%.1f%%), remaining %.0f kcal\n", progress.Goal.Calories, progress.CaloriesPct, progress.Remaining.Calories)
			fmt.Fprintf(cmd.OutOrStdout(), "Goal macros: P %.0f%% | C %.0f%% | F %.0f%%\n", progress.ProteinPct, progress.CarbsPct, progress.FatPct)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
}
