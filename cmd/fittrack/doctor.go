package fittrack

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entries with unknown units: %d\n", report.UnknownUnitEntries)
			fmt.Fprintf(cmd.OutOrStdout(), "Meals with mismatched default unit: %d\n", report.MismatchedMealUnit)
			for _, st := range report.OverLimit {
				fmt.Fprintf(cmd.OutOrStdout(), "Over limit: %s %s\n", st.Feature, st.Display)
			}
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Fixed meal units: %d\n", report.FixedMealUnits)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Reset mismatched meal units to their category default")
}
