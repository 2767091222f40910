package fittrack

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Analyze, scale, convert, and look up foods",
}

var (
	foodJSON       bool
	foodCategories []string
	foodServing    string

	scaleCalories float64
	scaleProtein  float64
	scaleCarbs    float64
	scaleFat      float64
	scaleAmount   float64
	scaleUnit     string
	scaleServings float64
	scaleLiquid   bool

	convertDensity float64
	searchLimit    int
	foodProvider   string
)

var foodAnalyzeCmd = &cobra.Command{
	Use:   "analyze <name>",
	Short: "Infer category, units, and default amount for a food",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis := service.AnalyzeFood(strings.Join(args, " "), foodCategories, foodServing)
		if foodJSON {
			return printJSON(cmd, analysis)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Category: %s\n", analysis.Category)
		fmt.Fprintf(cmd.OutOrStdout(), "Units: %s\n", strings.Join(analysis.AppropriateUnits, ", "))
		fmt.Fprintf(cmd.OutOrStdout(), "Default: %g %s\n", analysis.DefaultAmount, analysis.DefaultUnit)
		return nil
	},
}

var foodScaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Scale per-100 g/ml nutrition to an amount",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.ScaleInput{
			Base:     service.BaseNutrition{Calories: scaleCalories, ProteinG: scaleProtein, CarbsG: scaleCarbs, FatG: scaleFat},
			Amount:   scaleAmount,
			Unit:     scaleUnit,
			Servings: scaleServings,
			IsLiquid: scaleLiquid,
		}
		warnUnknownUnit(scaleUnit)
		out := service.ScaleNutrition(in)
		if foodJSON {
			return printJSON(cmd, out)
		}
		unitLabel := service.NormalizeUnit(scaleUnit)
		if service.IsCountUnit(scaleUnit) {
			fmt.Fprintf(cmd.OutOrStdout(), "Quantity: %g %s\n", scaleServings, unitLabel)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Quantity: %g x %g %s\n", scaleServings, scaleAmount, unitLabel)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Base: per %s\n", in.ReferenceLabel())
		fmt.Fprintf(cmd.OutOrStdout(), "Calories: %.1f\nProtein: %.1fg\nCarbs: %.1fg\nFat: %.1fg\n", out.Calories, out.ProteinG, out.CarbsG, out.FatG)
		return nil
	},
}

var foodConvertCmd = &cobra.Command{
	Use:   "convert <amount> <from-unit> <to-unit>",
	Short: "Convert an amount between units",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := parseFloatArg("amount", args[0])
		if err != nil {
			return err
		}
		out, err := service.ConvertAmount(value, args[1], args[2], convertDensity)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%g %s = %.4f %s\n", value, service.NormalizeUnit(args[1]), out, service.NormalizeUnit(args[2]))
		return nil
	},
}

var foodLookupCmd = &cobra.Command{
	Use:   "lookup <barcode>",
	Short: "Look up a product by barcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			src, err := newProductSource(foodProvider)
			if err != nil {
				return err
			}
			logger.Debug("barcode lookup", zap.String("barcode", args[0]), zap.String("provider", src.Name()))
			result, err := service.LookupProduct(cmd.Context(), sqldb, src, args[0])
			if err != nil {
				return err
			}
			if foodJSON {
				return printJSON(cmd, result)
			}
			printProduct(cmd, result)
			return nil
		})
	},
}

var foodSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search product databases by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		src, err := newProductSource(foodProvider)
		if err != nil {
			return err
		}
		logger.Debug("product search", zap.String("query", query), zap.Int("limit", searchLimit), zap.String("provider", src.Name()))
		results, err := service.SearchProducts(cmd.Context(), src, query, searchLimit)
		if err != nil {
			return err
		}
		if foodJSON {
			return printJSON(cmd, results)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "BARCODE\tNAME\tBRAND\tCATEGORY\tDEFAULT\tKCAL_PER_100\tSOURCE\tCONFIDENCE")
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%g %s\t%.1f\t%s\t%s\n", r.Barcode, r.Name, r.Brand, r.Analysis.Category, r.Analysis.DefaultAmount, r.Analysis.DefaultUnit, r.Per100.Calories, r.Source, confidenceLabel(r.Confidence))
		}
		return nil
	},
}

func printProduct(cmd *cobra.Command, p service.ProductAnalysis) {
	ref := service.ScaleInput{IsLiquid: p.Analysis.Category == service.FoodLiquid}.ReferenceLabel()
	fmt.Fprintf(cmd.OutOrStdout(), "Barcode: %s\n", p.Barcode)
	fmt.Fprintf(cmd.OutOrStdout(), "Food: %s\n", p.Name)
	fmt.Fprintf(cmd.OutOrStdout(), "Brand: %s\n", p.Brand)
	if p.Source != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Source: %s\n", p.Source)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Confidence: %s\n", confidenceLabel(p.Confidence))
	fmt.Fprintf(cmd.OutOrStdout(), "Category: %s (units: %s)\n", p.Analysis.Category, strings.Join(p.Analysis.AppropriateUnits, ", "))
	fmt.Fprintf(cmd.OutOrStdout(), "Per %s: %.1f kcal | P %.1fg | C %.1fg | F %.1fg\n", ref, p.Per100.Calories, p.Per100.ProteinG, p.Per100.CarbsG, p.Per100.FatG)
	fmt.Fprintf(cmd.OutOrStdout(), "Default serving: %g %s = %.1f kcal | P %.1fg | C %.1fg | F %.1fg\n",
		p.Analysis.DefaultAmount, p.Analysis.DefaultUnit, p.DefaultServing.Calories, p.DefaultServing.ProteinG, p.DefaultServing.CarbsG, p.DefaultServing.FatG)
}

func confidenceLabel(c service.Confidence) string {
	if c.Verified {
		return fmt.Sprintf("%.2f verified", c.Score)
	}
	return fmt.Sprintf("%.2f", c.Score)
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodAnalyzeCmd, foodScaleCmd, foodConvertCmd, foodLookupCmd, foodSearchCmd)

	foodCmd.PersistentFlags().BoolVar(&foodJSON, "json", false, "Output JSON")

	foodAnalyzeCmd.Flags().StringSliceVar(&foodCategories, "category", nil, "Product category tag (repeatable)")
	foodAnalyzeCmd.Flags().StringVar(&foodServing, "serving", "", "Serving size text, e.g. 250ml")

	foodScaleCmd.Flags().Float64Var(&scaleCalories, "calories", 0, "Calories per 100 g/ml")
	foodScaleCmd.Flags().Float64Var(&scaleProtein, "protein", 0, "Protein grams per 100 g/ml")
	foodScaleCmd.Flags().Float64Var(&scaleCarbs, "carbs", 0, "Carbs grams per 100 g/ml")
	foodScaleCmd.Flags().Float64Var(&scaleFat, "fat", 0, "Fat grams per 100 g/ml")
	foodScaleCmd.Flags().Float64Var(&scaleAmount, "amount", 100, "Amount in --unit (ignored for piece/slice)")
	foodScaleCmd.Flags().StringVar(&scaleUnit, "unit", "gram", "Unit, e.g. gram, ml, cup, piece")
	foodScaleCmd.Flags().Float64Var(&scaleServings, "servings", 1, "Number of servings")
	foodScaleCmd.Flags().BoolVar(&scaleLiquid, "liquid", false, "Base values are per 100 ml")

	foodConvertCmd.Flags().Float64Var(&convertDensity, "density", 0, "Density in g/ml for mass/volume conversion")
	foodSearchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Max results")
	for _, c := range []*cobra.Command{foodLookupCmd, foodSearchCmd} {
		c.Flags().StringVar(&foodProvider, "provider", "auto", "Product source: auto, off, or usda")
	}
}
