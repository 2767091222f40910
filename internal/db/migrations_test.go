package db_test

import (
	"path/filepath"
	"testing"

	"github.com/saadjs/fittrack-cli/internal/db"
)

func TestApplyMigrationsIdempotentAndSeedsDefaults(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "fittrack.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	var migrationCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&migrationCount); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrationCount != 6 {
		t.Fatalf("expected 6 migration versions, got %d", migrationCount)
	}

	for _, table := range []string{"app_config", "custom_exercises", "custom_meals", "food_entries", "goals", "workout_logs"} {
		var count int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("check %s table: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}

	var tier string
	if err := sqldb.QueryRow(`SELECT value FROM app_config WHERE key = 'subscription_tier'`).Scan(&tier); err != nil {
		t.Fatalf("read seeded tier: %v", err)
	}
	if tier != "free" {
		t.Fatalf("expected seeded tier free, got %q", tier)
	}
}

func TestApplyMigrationsKeepsExistingConfig(t *testing.T) {
	t.Parallel()

	sqldb, err := db.Open(filepath.Join(t.TempDir(), "fittrack.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := sqldb.Exec(`UPDATE app_config SET value = 'premium' WHERE key = 'subscription_tier'`); err != nil {
		t.Fatalf("update tier: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("reapply migrations: %v", err)
	}

	var tier string
	if err := sqldb.QueryRow(`SELECT value FROM app_config WHERE key = 'subscription_tier'`).Scan(&tier); err != nil {
		t.Fatalf("read tier: %v", err)
	}
	if tier != "premium" {
		t.Fatalf("expected reseeding to keep premium, got %q", tier)
	}
}
