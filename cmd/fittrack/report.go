package fittrack

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "View weekly and range intake reports",
}

var (
	reportJSON      bool
	reportTolerance float64
	reportWeekEnd   string
	reportFrom      string
	reportTo        string
)

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Seven-day report ending on --end (default today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		end := time.Now()
		if reportWeekEnd != "" {
			parsed, err := time.ParseInLocation("2006-01-02", reportWeekEnd, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --end date (expected YYYY-MM-DD)")
			}
			end = parsed
		}
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.WeeklyReport(sqldb, end)
			if err != nil {
				return err
			}
			return printReport(cmd, report)
		})
	},
}

var reportRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Report over an arbitrary date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportFrom == "" || reportTo == "" {
			return fmt.Errorf("--from and --to are required")
		}
		start, err := time.ParseInLocation("2006-01-02", reportFrom, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --from date (expected YYYY-MM-DD)")
		}
		end, err := time.ParseInLocation("2006-01-02", reportTo, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --to date (expected YYYY-MM-DD)")
		}
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.AnalyticsRange(sqldb, start, end, reportTolerance)
			if err != nil {
				return err
			}
			return printReport(cmd, report)
		})
	},
}

func printReport(cmd *cobra.Command, r *service.AnalyticsReport) error {
	if reportJSON {
		return printJSON(cmd, r)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Range: %s to %s\n", r.FromDate, r.ToDate)
	fmt.Fprintf(out, "Totals: kcal=%.0f P=%.1f C=%.1f F=%.1f\n", r.Total.Calories, r.Total.ProteinG, r.Total.CarbsG, r.Total.FatG)
	avg := r.DailyAverage
	fmt.Fprintf(out, "Averages/day (%d logged days): kcal=%.1f P=%.1f C=%.1f F=%.1f\n", r.LoggedDays, avg.Calories, avg.ProteinG, avg.CarbsG, avg.FatG)
	if r.Highest != nil && r.Lowest != nil {
		fmt.Fprintf(out, "Highest day: %s (%.0f kcal)\n", r.Highest.Date, r.Highest.Nutrition.Calories)
		fmt.Fprintf(out, "Lowest day: %s (%.0f kcal)\n", r.Lowest.Date, r.Lowest.Nutrition.Calories)
	}
	fmt.Fprintf(out, "Adherence: %d/%d days within goals (%.1f%%), %d days without goal\n", r.Adherence.WithinGoalDays, r.Adherence.EvaluatedDays, r.Adherence.PercentWithin, r.Adherence.SkippedGoalDays)
	fmt.Fprintf(out, "Workouts: %d (%d min)\n", r.Workouts, r.WorkoutMinutes)

	fmt.Fprintln(out, "\nBy Food Category")
	fmt.Fprintln(out, "CATEGORY\tENTRIES\tKCAL\tSHARE\tP\tC\tF")
	for _, c := range r.ByCategory {
		n := c.Nutrition
		fmt.Fprintf(out, "%s\t%d\t%.0f\t%.1f%%\t%.1f\t%.1f\t%.1f\n", c.Category, c.Entries, n.Calories, c.CaloriesPct, n.ProteinG, n.CarbsG, n.FatG)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportWeeklyCmd, reportRangeCmd)
	reportCmd.PersistentFlags().BoolVar(&reportJSON, "json", false, "Output JSON")

	reportWeeklyCmd.Flags().StringVar(&reportWeekEnd, "end", "", "Last day of the week YYYY-MM-DD (default today)")
	reportRangeCmd.Flags().StringVar(&reportFrom, "from", "", "Start date YYYY-MM-DD")
	reportRangeCmd.Flags().StringVar(&reportTo, "to", "", "End date YYYY-MM-DD")
	reportRangeCmd.Flags().Float64Var(&reportTolerance, "tolerance", service.DefaultAdherenceTolerance, "Macro adherence tolerance as a fraction")
}
