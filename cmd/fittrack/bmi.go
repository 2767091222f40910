package fittrack

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var (
	bmiWeightKg float64
	bmiHeightCm float64
)

var bmiCmd = &cobra.Command{
	Use:   "bmi",
	Short: "Calculate body-mass index",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			res, err := service.CalculateBMIForCurrentTier(sqldb, bmiWeightKg, bmiHeightCm)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "BMI: %.1f (%s)\n", res.BMI, res.Band)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(bmiCmd)
	bmiCmd.Flags().Float64Var(&bmiWeightKg, "weight", 0, "Body weight in kg")
	bmiCmd.Flags().Float64Var(&bmiHeightCm, "height", 0, "Height in cm")
	_ = bmiCmd.MarkFlagRequired("weight")
	_ = bmiCmd.MarkFlagRequired("height")
}
