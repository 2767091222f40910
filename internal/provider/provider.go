// Package provider holds the product shape shared by the nutrition data
// clients and a fallback chain over them.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Nutrition is per 100 g (or 100 ml for drinks).
type Nutrition struct {
	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

type Product struct {
	Barcode     string
	Name        string
	Brand       string
	Categories  []string
	ServingSize string
	Per100g     Nutrition
	// Source names the provider that answered, e.g. "openfoodfacts".
	Source string
}

// Source fetches products by barcode or free-text query.
type Source interface {
	Name() string
	LookupBarcode(ctx context.Context, barcode string) (Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
}

// NewLimiter returns a token bucket allowing requestsPerMinute with no burst.
// A non-positive rate disables limiting.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// Chain asks each source in order and returns the first answer. When every
// source fails the errors are joined.
type Chain []Source

func (c Chain) Name() string {
	return "auto"
}

func (c Chain) LookupBarcode(ctx context.Context, barcode string) (Product, error) {
	var errs []error
	for _, src := range c {
		p, err := src.LookupBarcode(ctx, barcode)
		if err == nil {
			return p, nil
		}
		if ctx.Err() != nil {
			return Product{}, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
	}
	if len(errs) == 0 {
		return Product{}, fmt.Errorf("no product providers configured")
	}
	return Product{}, errors.Join(errs...)
}

func (c Chain) SearchProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	var errs []error
	for _, src := range c {
		items, err := src.SearchProducts(ctx, query, limit)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err == nil {
			err = fmt.Errorf("no results")
		}
		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("no product providers configured")
	}
	return nil, errors.Join(errs...)
}
