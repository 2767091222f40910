package fittrack

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Manage food log entries",
}

var (
	logName     string
	logMeal     string
	logCalories float64
	logProtein  float64
	logCarbs    float64
	logFat      float64
	logCategory string
	logServing  string
	logAmount   float64
	logUnit     string
	logServings float64
	logDate     string
	logTime     string
	logNotes    string
)

var logAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food, scaling its nutrition to the amount eaten",
	RunE: func(cmd *cobra.Command, args []string) error {
		consumed, err := parseDateTimeOrNow(logDate, logTime)
		if err != nil {
			return err
		}
		if logMeal == "" && logName == "" {
			return fmt.Errorf("--name or --meal is required")
		}
		warnUnknownUnit(logUnit)
		in := service.LogFoodInput{
			Name:        logName,
			Meal:        logMeal,
			Nutrition:   service.BaseNutrition{Calories: logCalories, ProteinG: logProtein, CarbsG: logCarbs, FatG: logFat},
			Category:    logCategory,
			ServingSize: logServing,
			Amount:      logAmount,
			Unit:        logUnit,
			Servings:    &logServings,
			Consumed:    consumed,
			Notes:       logNotes,
		}
		return withDB(func(sqldb *sql.DB) error {
			entry, err := service.LogFood(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged entry %d: %s, %g x %g %s = %.1f kcal\n", entry.ID, entry.Name, entry.Servings, entry.Amount, entry.Unit, entry.Calories)
			return nil
		})
	},
}

var (
	logListDate string
	logFromDate string
	logToDate   string
	logLimit    int
)

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List food log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := service.ListFoodEntriesFilter{
			Date:     logListDate,
			FromDate: logFromDate,
			ToDate:   logToDate,
			Limit:    logLimit,
		}
		return withDB(func(sqldb *sql.DB) error {
			entries, err := service.ListFoodEntries(sqldb, filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tNAME\tCATEGORY\tQTY\tKCAL\tP\tC\tF")
			for _, e := range entries {
				qty := fmt.Sprintf("%g x %g %s", e.Servings, e.Amount, e.Unit)
				if service.IsCountUnit(e.Unit) {
					qty = fmt.Sprintf("%g %s", e.Servings, e.Unit)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n",
					e.ID, e.ConsumedAt.Local().Format("2006-01-02 15:04"), e.Name, e.FoodCategory, qty, e.Calories, e.ProteinG, e.CarbsG, e.FatG)
			}
			return nil
		})
	},
}

var logDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a food log entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteFoodEntry(sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logAddCmd, logListCmd, logDeleteCmd)

	logAddCmd.Flags().StringVar(&logName, "name", "", "Food name")
	logAddCmd.Flags().StringVar(&logMeal, "meal", "", "Custom meal id, ref, or name to log")
	logAddCmd.Flags().Float64Var(&logCalories, "calories", 0, "Calories per 100 g/ml")
	logAddCmd.Flags().Float64Var(&logProtein, "protein", 0, "Protein grams per 100 g/ml")
	logAddCmd.Flags().Float64Var(&logCarbs, "carbs", 0, "Carbs grams per 100 g/ml")
	logAddCmd.Flags().Float64Var(&logFat, "fat", 0, "Fat grams per 100 g/ml")
	logAddCmd.Flags().StringVar(&logCategory, "category", "", "Food category: liquid, solid, countable, powder (default inferred)")
	logAddCmd.Flags().StringVar(&logServing, "serving", "", "Serving size text used to infer the default amount")
	logAddCmd.Flags().Float64Var(&logAmount, "amount", 0, "Amount in --unit (default inferred)")
	logAddCmd.Flags().StringVar(&logUnit, "unit", "", "Unit (default inferred)")
	logAddCmd.Flags().Float64Var(&logServings, "servings", 1, "Number of servings")
	logAddCmd.Flags().StringVar(&logDate, "date", "", "Date YYYY-MM-DD (default now)")
	logAddCmd.Flags().StringVar(&logTime, "time", "", "Time HH:MM")
	logAddCmd.Flags().StringVar(&logNotes, "notes", "", "Notes")

	logListCmd.Flags().StringVar(&logListDate, "date", "", "Filter by date YYYY-MM-DD")
	logListCmd.Flags().StringVar(&logFromDate, "from", "", "Filter from date YYYY-MM-DD")
	logListCmd.Flags().StringVar(&logToDate, "to", "", "Filter to date YYYY-MM-DD")
	logListCmd.Flags().IntVar(&logLimit, "limit", 50, "Max rows")
}
