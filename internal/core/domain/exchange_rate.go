package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ExchangeRate is an immutable conversion rate between two currencies on a
// given effective date. The rate is normalized to six decimal places and must
// be strictly positive.
type ExchangeRate struct {
	FromCurrency  string          `json:"fromCurrency"`
	ToCurrency    string          `json:"toCurrency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate time.Time       `json:"effectiveDate"`
}

// NewExchangeRate builds a normalized ExchangeRate value.
func NewExchangeRate(from, to string, rate decimal.Decimal, effectiveDate time.Time) (ExchangeRate, error) {
	fromCode := strings.ToUpper(strings.TrimSpace(from))
	toCode := strings.ToUpper(strings.TrimSpace(to))
	if len(fromCode) != 3 || len(toCode) != 3 {
		return ExchangeRate{}, fmt.Errorf("%w: currency codes must be 3 letters, got %q and %q", apperrors.ErrValidation, from, to)
	}
	if !rate.IsPositive() {
		return ExchangeRate{}, fmt.Errorf("%w: exchange rate must be positive, got %s", apperrors.ErrValidation, rate)
	}
	return ExchangeRate{
		FromCurrency:  fromCode,
		ToCurrency:    toCode,
		Rate:          rate.Round(6),
		EffectiveDate: effectiveDate,
	}, nil
}

// Invert swaps the currency pair and reciprocates the rate.
func (r ExchangeRate) Invert() (ExchangeRate, error) {
	if r.Rate.IsZero() {
		return ExchangeRate{}, fmt.Errorf("%w: cannot invert a zero rate", apperrors.ErrValidation)
	}
	return ExchangeRate{
		FromCurrency:  r.ToCurrency,
		ToCurrency:    r.FromCurrency,
		Rate:          decimal.NewFromInt(1).Div(r.Rate).Round(6),
		EffectiveDate: r.EffectiveDate,
	}, nil
}

// IsExpired reports whether the rate is older than the given validity window at time now.
func (r ExchangeRate) IsExpired(validity time.Duration, now time.Time) bool {
	return now.After(r.EffectiveDate.Add(validity))
}

// Convert applies the rate to an amount denominated in the from-currency.
func (r ExchangeRate) Convert(m Money) (Money, error) {
	if m.Currency != r.FromCurrency {
		return Money{}, fmt.Errorf("%w: amount is %s, rate converts from %s", apperrors.ErrCurrencyMismatch, m.Currency, r.FromCurrency)
	}
	return Money{Amount: m.Amount.Mul(r.Rate).Round(2), Currency: r.ToCurrency}, nil
}
