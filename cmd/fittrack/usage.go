package fittrack

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var usageJSON bool

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show library usage against plan limits",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.UsageReport(sqldb)
			if err != nil {
				return err
			}
			if usageJSON {
				return printJSON(cmd, report)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "FEATURE\tTIER\tUSAGE\tCAN_ADD")
			for _, st := range report {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%t\n", st.Feature, st.Tier, st.Display, st.CanAddMore)
			}
			for _, st := range report {
				if st.Message != "" {
					fmt.Fprintln(cmd.OutOrStdout(), st.Message)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.Flags().BoolVar(&usageJSON, "json", false, "Output JSON")
}
