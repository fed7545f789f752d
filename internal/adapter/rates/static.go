package rates

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// StaticProvider implements ports.RateProvider from a fixed table of
// currency-pair quotes, typically loaded from configuration. When a pair has
// no direct quote the inverse pair is tried and its reciprocal returned.
type StaticProvider struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewStaticProvider parses a map of "FROM/TO" pairs to decimal strings.
func NewStaticProvider(pairs map[string]string) (*StaticProvider, error) {
	rates := make(map[string]decimal.Decimal, len(pairs))
	for pair, value := range pairs {
		from, to, ok := strings.Cut(pair, "/")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("malformed rate pair %q, want FROM/TO", pair)
		}
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("rate for %q: %w", pair, err)
		}
		if rate.Sign() <= 0 {
			return nil, fmt.Errorf("rate for %q must be positive", pair)
		}
		rates[pairKey(from, to)] = rate
	}
	return &StaticProvider{rates: rates}, nil
}

// Quote returns the rate for converting fromCode into toCode.
func (p *StaticProvider) Quote(_ context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if rate, ok := p.rates[pairKey(fromCode, toCode)]; ok {
		return rate, nil
	}
	if inverse, ok := p.rates[pairKey(toCode, fromCode)]; ok {
		return decimal.NewFromInt(1).Div(inverse), nil
	}
	return decimal.Zero, fmt.Errorf("no quote for %s/%s", fromCode, toCode)
}

// Update replaces the quote for one pair. Useful for tests and live reloads.
func (p *StaticProvider) Update(fromCode, toCode string, rate decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rates[pairKey(fromCode, toCode)] = rate
}

func pairKey(from, to string) string {
	return strings.ToUpper(from) + "/" + strings.ToUpper(to)
}
