package fittrack

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/fittrack-cli/internal/app"
	"github.com/saadjs/fittrack-cli/internal/db"
	"github.com/saadjs/fittrack-cli/internal/provider"
	"github.com/saadjs/fittrack-cli/internal/provider/openfoodfacts"
	"github.com/saadjs/fittrack-cli/internal/provider/usda"
	"github.com/saadjs/fittrack-cli/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func withDB(run func(*sql.DB) error) error {
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
	return logGateDenial(run(sqldb))
}

// logGateDenial records plan denials and passes err through unchanged.
func logGateDenial(err error) error {
	var limitErr *service.LimitError
	var featureErr *service.FeatureError
	switch {
	case errors.As(err, &limitErr):
		logger.Info("blocked by usage limit",
			zap.String("feature", limitErr.Status.Feature),
			zap.String("tier", limitErr.Status.Tier),
			zap.String("usage", limitErr.Status.Display),
		)
	case errors.As(err, &featureErr):
		logger.Info("blocked by plan",
			zap.Stringer("feature", featureErr.Feature),
			zap.Stringer("tier", featureErr.Tier),
		)
	}
	return err
}

func newOpenFoodFactsClient() *openfoodfacts.Client {
	return &openfoodfacts.Client{
		BaseURL:    cfg.OpenFoodFacts.BaseURL,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.OpenFoodFacts.TimeoutSeconds) * time.Second},
		Limiter:    provider.NewLimiter(cfg.OpenFoodFacts.RequestsPerMinute),
	}
}

func newUSDAClient() *usda.Client {
	return &usda.Client{
		APIKey:     cfg.USDA.APIKey,
		BaseURL:    cfg.USDA.BaseURL,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.USDA.TimeoutSeconds) * time.Second},
		Limiter:    provider.NewLimiter(cfg.USDA.RequestsPerMinute),
	}
}

// newProductSource resolves --provider. "auto" tries Open Food Facts first and
// falls back to USDA when an API key is configured.
func newProductSource(name string) (provider.Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		chain := provider.Chain{newOpenFoodFactsClient()}
		if strings.TrimSpace(cfg.USDA.APIKey) != "" {
			chain = append(chain, newUSDAClient())
		}
		return chain, nil
	case "off", "openfoodfacts":
		return newOpenFoodFactsClient(), nil
	case "usda":
		if strings.TrimSpace(cfg.USDA.APIKey) == "" {
			return nil, fmt.Errorf("usda provider requires usda.api_key or FITTRACK_USDA_API_KEY")
		}
		return newUSDAClient(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected auto, off, or usda)", name)
	}
}

func warnUnknownUnit(unit string) {
	if strings.TrimSpace(unit) != "" && !service.IsKnownUnit(unit) {
		logger.Warn("unknown unit, scaling 1:1 with grams", zap.String("unit", unit))
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func parseFloatArg(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return v, nil
}

func parseDateTimeOrNow(date, timeStr string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now(), nil
	}
	if date == "" {
		return time.Time{}, fmt.Errorf("--date is required when --time is set")
	}
	if timeStr == "" {
		t, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
		}
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}
