package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConvertAmountRequest converts an amount between two currencies at a
// caller-supplied rate.
type ConvertAmountRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	FromCurrency  string          `json:"fromCurrency" binding:"required,len=3"`
	ToCurrency    string          `json:"toCurrency" binding:"required,len=3"`
	Rate          decimal.Decimal `json:"rate" binding:"required"`
	EffectiveDate *time.Time      `json:"effectiveDate"` // defaults to now
}

// ConvertAmountResponse carries the converted amount and the rate in both directions.
type ConvertAmountResponse struct {
	Amount          decimal.Decimal `json:"amount"`
	FromCurrency    string          `json:"fromCurrency"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	ToCurrency      string          `json:"toCurrency"`
	Rate            decimal.Decimal `json:"rate"`
	InverseRate     decimal.Decimal `json:"inverseRate"`
	EffectiveDate   time.Time       `json:"effectiveDate"`
}
