package domain

import (
	"fmt"
	"strings"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Money is an immutable currency-tagged amount. The amount is normalized to
// two decimal places (half rounds away from zero) and the currency code to
// upper case on construction. Arithmetic across two different currencies is
// rejected with apperrors.ErrCurrencyMismatch.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney builds a normalized Money value. The currency must be a 3-letter code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return Money{}, fmt.Errorf("%w: currency code must be 3 letters, got %q", apperrors.ErrValidation, currency)
	}
	return Money{Amount: amount.Round(2), Currency: code}, nil
}

// MustMoney is NewMoney for statically known inputs; it panics on a bad currency code.
func MustMoney(amount decimal.Decimal, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return fmt.Errorf("%w: %s vs %s", apperrors.ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return nil
}

// Add returns m + other, failing on mixed currencies.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount).Round(2), Currency: m.Currency}, nil
}

// Sub returns m - other, failing on mixed currencies.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Sub(other.Amount).Round(2), Currency: m.Currency}, nil
}

// Cmp compares m against other (-1, 0, 1), failing on mixed currencies.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.Amount.Cmp(other.Amount), nil
}

// Mul scales the amount by a rate, keeping the currency.
func (m Money) Mul(rate decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(rate).Round(2), Currency: m.Currency}
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}
