package fittrack

import (
	"database/sql"
	"fmt"
	"slices"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show and change the subscription plan",
}

var planStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored subscription and effective tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			state, err := service.GetSubscriptionState(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subscribed: %t\n", state.Subscribed)
			fmt.Fprintf(cmd.OutOrStdout(), "Subscription tier: %s\n", state.SubscriptionTier)
			if state.TestMode {
				fmt.Fprintf(cmd.OutOrStdout(), "Test mode: on (%s)\n", state.TestTier)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Test mode: off")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Effective tier: %s\n", service.ResolveTier(state))
			return nil
		})
	},
}

var planSetCmd = &cobra.Command{
	Use:   "set <free|pro|premium>",
	Short: "Record the active subscription tier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetSubscription(sqldb, args[0]); err != nil {
				return err
			}
			tier, err := service.CurrentTier(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subscription set. Effective tier: %s\n", tier)
			return nil
		})
	},
}

var (
	testModeTier string
	testModeOff  bool
)

var planTestModeCmd = &cobra.Command{
	Use:   "test-mode",
	Short: "Preview a tier without changing the subscription",
	RunE: func(cmd *cobra.Command, args []string) error {
		if testModeOff == (testModeTier != "") {
			return fmt.Errorf("set exactly one of --tier or --off")
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetTestMode(sqldb, !testModeOff, testModeTier); err != nil {
				return err
			}
			tier, err := service.CurrentTier(sqldb)
			if err != nil {
				return err
			}
			if testModeOff {
				fmt.Fprintf(cmd.OutOrStdout(), "Test mode off. Effective tier: %s\n", tier)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Test mode on. Effective tier: %s\n", tier)
			}
			return nil
		})
	},
}

var featuresTier string

var planFeaturesCmd = &cobra.Command{
	Use:   "features",
	Short: "List features and limits for the effective tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			tier, err := service.CurrentTier(sqldb)
			if err != nil {
				return err
			}
			if featuresTier != "" {
				t, ok := service.ParseTier(featuresTier)
				if !ok {
					return fmt.Errorf("unknown tier %q (expected free, pro, or premium)", featuresTier)
				}
				tier = t
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tier: %s\n", tier)
			fmt.Fprintln(cmd.OutOrStdout(), "FEATURE\tAVAILABLE\tLIMIT")
			for _, f := range service.AllFeatures() {
				limit := "-"
				if slices.Contains(service.LimitedFeatures(), f) {
					limit = service.FeatureLimit(tier, f).String()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\t%s\n", f, service.HasFeature(tier, f), limit)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planStatusCmd, planSetCmd, planTestModeCmd, planFeaturesCmd)

	planTestModeCmd.Flags().StringVar(&testModeTier, "tier", "", "Tier to preview: free, pro, premium")
	planTestModeCmd.Flags().BoolVar(&testModeOff, "off", false, "Disable test mode")
	planFeaturesCmd.Flags().StringVar(&featuresTier, "tier", "", "Show a specific tier instead of the effective one")
}
