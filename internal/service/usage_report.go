package service

import (
	"database/sql"
	"fmt"
)

var usageCounters = map[Feature]func(*sql.DB) (int, error){
	FeatureCustomExercises: CountCustomExercises,
	FeatureCustomMeals:     CountCustomMeals,
}

// UsageReport returns usage against the effective tier's limit for every
// limited feature. Rows over their limit after a downgrade are kept as is.
func UsageReport(db *sql.DB) ([]UsageStatus, error) {
	tier, err := CurrentTier(db)
	if err != nil {
		return nil, err
	}
	out := make([]UsageStatus, 0, len(usageCounters))
	for _, f := range LimitedFeatures() {
		count, ok := usageCounters[f]
		if !ok {
			return nil, fmt.Errorf("no usage counter for %s", f)
		}
		n, err := count(db)
		if err != nil {
			return nil, err
		}
		out = append(out, CheckUsage(tier, f, n))
	}
	return out, nil
}
