package fittrack

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportFormat string
	exportOut    string
	importIn     string
	importMode   string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export local data (json, or csv for the food log)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(exportOut) == "" {
			return fmt.Errorf("--out is required")
		}
		format := strings.ToLower(strings.TrimSpace(exportFormat))
		if format != "json" && format != "csv" {
			return fmt.Errorf("invalid --format %q (use json or csv)", exportFormat)
		}
		return withDB(func(sqldb *sql.DB) error {
			data, err := service.ExportDataSnapshot(sqldb)
			if err != nil {
				return err
			}
			if format == "csv" {
				err = writeEntriesCSV(exportOut, data.FoodEntries)
			} else {
				err = writeExportJSON(exportOut, data)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", format, exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a json export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		mode, err := service.ParseImportMode(importMode)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(importIn)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		var data service.ExportData
		if err := json.Unmarshal(b, &data); err != nil {
			return fmt.Errorf("parse import json: %w", err)
		}
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.ImportDataSnapshot(sqldb, &data, service.ImportOptions{Mode: mode, DryRun: importDryRun})
			if err != nil {
				return err
			}
			prefix := "Imported"
			if importDryRun {
				prefix = "Dry run"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: inserted=%d skipped=%d conflicts=%d blocked=%d\n", prefix, report.Inserted, report.Skipped, report.Conflicts, report.Blocked)
			for _, w := range report.Warnings {
				logger.Warn("import item blocked by plan", zap.String("reason", w))
				fmt.Fprintln(cmd.ErrOrStderr(), w)
			}
			return nil
		})
	},
}

func writeExportJSON(path string, data *service.ExportData) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export json: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

func writeEntriesCSV(path string, entries []service.ExportFoodEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "food_category", "amount", "unit", "servings", "calories", "protein_g", "carbs_g", "fat_g", "meal", "consumed_at", "notes"}); err != nil {
		return fmt.Errorf("write export csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.Name,
			e.FoodCategory,
			strconv.FormatFloat(e.Amount, 'f', -1, 64),
			e.Unit,
			strconv.FormatFloat(e.Servings, 'f', -1, 64),
			strconv.FormatFloat(e.Nutrition.Calories, 'f', -1, 64),
			strconv.FormatFloat(e.Nutrition.ProteinG, 'f', -1, 64),
			strconv.FormatFloat(e.Nutrition.CarbsG, 'f', -1, 64),
			strconv.FormatFloat(e.Nutrition.FatG, 'f', -1, 64),
			e.Meal,
			e.ConsumedAt.Local().Format(time.RFC3339),
			e.Notes,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write export csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export csv: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or csv")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input json file path")
	importCmd.Flags().StringVar(&importMode, "mode", "skip", "Conflict handling: fail, skip, or replace")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and count without writing")
}
