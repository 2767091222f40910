package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func validateBaseNutrition(n BaseNutrition) error {
	if err := validateNonNegativeFloat("calories", n.Calories); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("protein", n.ProteinG); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("carbs", n.CarbsG); err != nil {
		return err
	}
	return validateNonNegativeFloat("fat", n.FatG)
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

// countRows counts a table owned by this package; table is never user input.
func countRows(q queryer, table string) (int, error) {
	var n int
	if err := q.QueryRow(`SELECT COUNT(1) FROM ` + table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func deleteByIDOrRef(db *sql.DB, table, label, idOrRef string) error {
	idOrRef = strings.TrimSpace(idOrRef)
	if idOrRef == "" {
		return fmt.Errorf("%s id or ref is required", label)
	}
	var (
		res sql.Result
		err error
	)
	if id, convErr := strconv.ParseInt(idOrRef, 10, 64); convErr == nil {
		if id <= 0 {
			return fmt.Errorf("%s id must be > 0", label)
		}
		res, err = db.Exec(`DELETE FROM `+table+` WHERE id = ?`, id)
	} else {
		res, err = db.Exec(`DELETE FROM `+table+` WHERE ref = ?`, idOrRef)
	}
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", label, idOrRef, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for %s %s: %w", label, idOrRef, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s not found", label, idOrRef)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
