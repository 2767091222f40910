package fittrack

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage fittrack local configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a stored configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetConfig(sqldb, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", strings.ToLower(strings.TrimSpace(args[0])))
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show stored configuration and effective settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if len(args) == 1 {
				value, ok, err := service.GetConfig(sqldb, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("config key %q is not set", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}

			stored, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(stored))
			for k := range stored {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, stored[k])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "log_level\t%s\n", cfg.LogLevel)
			fmt.Fprintf(cmd.OutOrStdout(), "openfoodfacts.base_url\t%s\n", cfg.OpenFoodFacts.BaseURL)
			fmt.Fprintf(cmd.OutOrStdout(), "openfoodfacts.requests_per_minute\t%d\n", cfg.OpenFoodFacts.RequestsPerMinute)
			fmt.Fprintf(cmd.OutOrStdout(), "usda.base_url\t%s\n", cfg.USDA.BaseURL)
			fmt.Fprintf(cmd.OutOrStdout(), "usda.api_key\t%s\n", keyState(cfg.USDA.APIKey))
			fmt.Fprintf(cmd.OutOrStdout(), "usda.timeout_seconds\t%d\n", cfg.USDA.TimeoutSeconds)
			fmt.Fprintf(cmd.OutOrStdout(), "server.addr\t%s\n", cfg.Server.Addr)
			return nil
		})
	},
}

func keyState(key string) string {
	if strings.TrimSpace(key) == "" {
		return "(not set)"
	}
	return "(set)"
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd)
}
