package provider_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/saadjs/fittrack-cli/internal/provider"
)

type stubSource struct {
	name     string
	product  provider.Product
	err      error
	searches int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) LookupBarcode(context.Context, string) (provider.Product, error) {
	return s.product, s.err
}

func (s *stubSource) SearchProducts(context.Context, string, int) ([]provider.Product, error) {
	s.searches++
	if s.err != nil {
		return nil, s.err
	}
	return []provider.Product{s.product}, nil
}

func TestChainFallsThroughToNextSource(t *testing.T) {
	t.Parallel()

	first := &stubSource{name: "openfoodfacts", err: errors.New("not found")}
	second := &stubSource{name: "usda", product: provider.Product{Name: "Greek Yogurt", Source: "usda"}}
	chain := provider.Chain{first, second}

	p, err := chain.LookupBarcode(context.Background(), "012345678905")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Source != "usda" {
		t.Fatalf("expected second source to answer, got %+v", p)
	}

	items, err := chain.SearchProducts(context.Background(), "yogurt", 5)
	if err != nil || len(items) != 1 {
		t.Fatalf("search: %v %+v", err, items)
	}
	if first.searches != 1 || second.searches != 1 {
		t.Fatalf("expected both sources searched once, got %d and %d", first.searches, second.searches)
	}
}

func TestChainJoinsErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("status 503")
	chain := provider.Chain{
		&stubSource{name: "openfoodfacts", err: boom},
		&stubSource{name: "usda", err: errors.New("missing USDA API key")},
	}
	_, err := chain.LookupBarcode(context.Background(), "12345678")
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to wrap the first failure, got %v", err)
	}
	for _, want := range []string{"openfoodfacts: status 503", "usda: missing USDA API key"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}

	if _, err := (provider.Chain{}).LookupBarcode(context.Background(), "12345678"); err == nil {
		t.Fatalf("expected error for empty chain")
	}
}

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	if l := provider.NewLimiter(0); !l.Allow() || !l.Allow() {
		t.Fatalf("non-positive rate should not limit")
	}
	l := provider.NewLimiter(60)
	if !l.Allow() {
		t.Fatalf("first request should pass")
	}
	if l.Allow() {
		t.Fatalf("second immediate request should wait for the bucket")
	}
}
