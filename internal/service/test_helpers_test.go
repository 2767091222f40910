package service_test

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/saadjs/fittrack-cli/internal/db"
	"github.com/saadjs/fittrack-cli/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fittrack.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

func setTier(t *testing.T, sqldb *sql.DB, tier string) {
	t.Helper()
	if err := service.SetSubscription(sqldb, tier); err != nil {
		t.Fatalf("set subscription %s: %v", tier, err)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func approxNutrition(a, b service.ScaledNutrition) bool {
	return approx(a.Calories, b.Calories) && approx(a.ProteinG, b.ProteinG) && approx(a.CarbsG, b.CarbsG) && approx(a.FatG, b.FatG)
}
