package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// DoctorReport lists data the current rules would not accept or would scale
// differently than the user expects.
type DoctorReport struct {
	UnknownUnitEntries int           `json:"unknown_unit_entries"`
	MismatchedMealUnit int           `json:"mismatched_meal_units"`
	OverLimit          []UsageStatus `json:"over_limit,omitempty"`
	FixedMealUnits     int           `json:"fixed_meal_units,omitempty"`
}

// Healthy ignores OverLimit: usage above a downgraded limit is allowed.
func (r DoctorReport) Healthy() bool {
	return r.UnknownUnitEntries == 0 && r.MismatchedMealUnit == 0
}

// CreateBackup writes a consistent snapshot of the open database to outPath
// with VACUUM INTO and records its SHA-256 next to it.
func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("snapshot database: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup copies backupPath over dbPath after verifying its checksum
// file when one exists. The database must not be open.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks logged units and meal defaults against the unit table and
// reports libraries above the current tier's limit. With fix, meal default
// units outside their category are reset to the category default.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}

	units, err := distinctEntryUnits(db)
	if err != nil {
		return report, err
	}
	for unit, n := range units {
		if !IsKnownUnit(unit) {
			report.UnknownUnitEntries += n
		}
	}

	meals, err := ListCustomMeals(db)
	if err != nil {
		return report, err
	}
	mismatched := make([]mealUnitFix, 0)
	for _, m := range meals {
		category := FoodCategory(m.FoodCategory)
		if !slices.Contains(UnitsForCategory(category), m.DefaultUnit) {
			report.MismatchedMealUnit++
			mismatched = append(mismatched, mealUnitFix{id: m.ID, unit: categoryProfiles[category].defaultUnit})
		}
	}

	usage, err := UsageReport(db)
	if err != nil {
		return report, err
	}
	for _, st := range usage {
		if st.OverLimit {
			report.OverLimit = append(report.OverLimit, st)
		}
	}

	if fix && len(mismatched) > 0 {
		tx, err := db.Begin()
		if err != nil {
			return report, fmt.Errorf("doctor fix begin tx: %w", err)
		}
		for _, m := range mismatched {
			if _, err := tx.Exec(`UPDATE custom_meals SET default_unit = ? WHERE id = ?`, m.unit, m.id); err != nil {
				_ = tx.Rollback()
				return report, fmt.Errorf("doctor fix meal %d: %w", m.id, err)
			}
			report.FixedMealUnits++
		}
		if err := tx.Commit(); err != nil {
			return report, fmt.Errorf("doctor fix commit: %w", err)
		}
	}
	return report, nil
}

type mealUnitFix struct {
	id   int64
	unit string
}

func distinctEntryUnits(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`SELECT unit, COUNT(1) FROM food_entries GROUP BY unit`)
	if err != nil {
		return nil, fmt.Errorf("doctor unit query: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var unit string
		var n int
		if err := rows.Scan(&unit, &n); err != nil {
			return nil, fmt.Errorf("doctor unit scan: %w", err)
		}
		out[unit] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctor unit iterate: %w", err)
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
