package service

import (
	"context"
	"errors"
	"strings"

	"github.com/finaurial/finance-tracker/internal/integrations/ecb"
)

// CurrencyRates returns reference rates rebased to base (default USD)
func (s *Service) CurrencyRates(ctx context.Context, base string) (*ecb.Rates, error) {
	if s.rates == nil {
		return nil, errors.New("currency rates are not configured")
	}
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = "USD"
	}

	rates, err := s.rates.Rates(ctx, base)
	if errors.Is(err, ecb.ErrUnknownCurrency) {
		return nil, invalid("Unknown currency " + base)
	}
	if err != nil {
		return nil, err
	}
	return rates, nil
}
