package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
)

func TestNewMoney_Normalization(t *testing.T) {
	tests := []struct {
		name       string
		amount     decimal.Decimal
		currency   string
		wantAmount string
		wantCode   string
	}{
		{
			name:       "rounds half away from zero",
			amount:     decimal.RequireFromString("10.555"),
			currency:   "USD",
			wantAmount: "10.56",
			wantCode:   "USD",
		},
		{
			name:       "negative half rounds away from zero",
			amount:     decimal.RequireFromString("-10.555"),
			currency:   "USD",
			wantAmount: "-10.56",
			wantCode:   "USD",
		},
		{
			name:       "uppercases and trims currency",
			amount:     decimal.NewFromInt(5),
			currency:   " eur ",
			wantAmount: "5.00",
			wantCode:   "EUR",
		},
		{
			name:       "drops excess precision",
			amount:     decimal.RequireFromString("1.004"),
			currency:   "IRR",
			wantAmount: "1.00",
			wantCode:   "IRR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := domain.NewMoney(tt.amount, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, m.Amount.StringFixed(2))
			assert.Equal(t, tt.wantCode, m.Currency)
		})
	}
}

func TestNewMoney_RejectsBadCurrency(t *testing.T) {
	for _, code := range []string{"", "US", "DOLLARS"} {
		_, err := domain.NewMoney(decimal.NewFromInt(1), code)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "currency %q", code)
	}
}

func TestMoney_ArithmeticSameCurrency(t *testing.T) {
	a := domain.MustMoney(decimal.RequireFromString("10.50"), "USD")
	b := domain.MustMoney(decimal.RequireFromString("2.25"), "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "12.75", sum.Amount.StringFixed(2))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "8.25", diff.Amount.StringFixed(2))

	cmp, err := a.Cmp(b)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
}

func TestMoney_RejectsMixedCurrencies(t *testing.T) {
	usd := domain.MustMoney(decimal.NewFromInt(10), "USD")
	eur := domain.MustMoney(decimal.NewFromInt(10), "EUR")

	_, err := usd.Add(eur)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	_, err = usd.Sub(eur)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	_, err = usd.Cmp(eur)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
}

func TestMoney_MulRoundsResult(t *testing.T) {
	m := domain.MustMoney(decimal.RequireFromString("100.00"), "USD")
	scaled := m.Mul(decimal.RequireFromString("0.333333"))
	assert.Equal(t, "33.33", scaled.Amount.StringFixed(2))
	assert.Equal(t, "USD", scaled.Currency)
}

func TestMoney_String(t *testing.T) {
	m := domain.MustMoney(decimal.RequireFromString("7.5"), "usd")
	assert.Equal(t, "7.50 USD", m.String())
	assert.False(t, m.IsZero())
	assert.False(t, m.IsNegative())
	assert.True(t, m.Neg().IsNegative())
}
