package fittrack

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Manage your custom meal library",
}

var (
	mealCalories float64
	mealProtein  float64
	mealCarbs    float64
	mealFat      float64
	mealCategory string
	mealServing  string
	mealUnit     string
	mealAmount   float64
	mealNotes    string
)

var mealAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a custom meal with nutrition per 100 g/ml",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			meal, err := service.CreateCustomMeal(sqldb, service.CustomMealInput{
				Name:          args[0],
				Nutrition:     service.BaseNutrition{Calories: mealCalories, ProteinG: mealProtein, CarbsG: mealCarbs, FatG: mealFat},
				Category:      mealCategory,
				ServingSize:   mealServing,
				DefaultUnit:   mealUnit,
				DefaultAmount: mealAmount,
				Notes:         mealNotes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added custom meal %d (%s): %s, default %g %s\n", meal.ID, meal.Ref, meal.FoodCategory, meal.DefaultAmount, meal.DefaultUnit)
			return printUsageWarning(cmd, sqldb, service.FeatureCustomMeals, service.CountCustomMeals)
		})
	},
}

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			meals, err := service.ListCustomMeals(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tREF\tNAME\tCATEGORY\tDEFAULT\tKCAL_PER_100\tP\tC\tF")
			for _, m := range meals {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%g %s\t%.1f\t%.1f\t%.1f\t%.1f\n",
					m.ID, m.Ref, m.Name, m.FoodCategory, m.DefaultAmount, m.DefaultUnit, m.Calories, m.ProteinG, m.CarbsG, m.FatG)
			}
			return nil
		})
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <id|ref>",
	Short: "Delete a custom meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteCustomMeal(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted custom meal %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd, mealListCmd, mealDeleteCmd)

	mealAddCmd.Flags().Float64Var(&mealCalories, "calories", 0, "Calories per 100 g/ml")
	mealAddCmd.Flags().Float64Var(&mealProtein, "protein", 0, "Protein grams per 100 g/ml")
	mealAddCmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "Carbs grams per 100 g/ml")
	mealAddCmd.Flags().Float64Var(&mealFat, "fat", 0, "Fat grams per 100 g/ml")
	mealAddCmd.Flags().StringVar(&mealCategory, "category", "", "Food category: liquid, solid, countable, powder (default inferred)")
	mealAddCmd.Flags().StringVar(&mealServing, "serving", "", "Serving size text, e.g. 330ml")
	mealAddCmd.Flags().StringVar(&mealUnit, "unit", "", "Default unit (default inferred)")
	mealAddCmd.Flags().Float64Var(&mealAmount, "amount", 0, "Default amount (default inferred)")
	mealAddCmd.Flags().StringVar(&mealNotes, "notes", "", "Notes")
}
