package fittrack

import (
	"fmt"

	"github.com/saadjs/fittrack-cli/internal/app"
	"github.com/saadjs/fittrack-cli/internal/config"
	"github.com/saadjs/fittrack-cli/internal/db"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local fittrack database and config",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := app.EnsureDBDir(path); err != nil {
			return err
		}

		sqldb, err := db.Open(path)
		if err != nil {
			return err
		}
		defer sqldb.Close()

		if err := db.ApplyMigrations(sqldb); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized fittrack database at %s\n", path)

		cfgPath, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if err := app.EnsureDBDir(cfgPath); err != nil {
			return err
		}
		wrote, err := config.WriteDefault(cfgPath)
		if err != nil {
			return err
		}
		if wrote {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", cfgPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}
