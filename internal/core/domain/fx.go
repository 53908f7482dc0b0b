package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxTransactionType distinguishes lot-creating purchases from other FX movements.
type FxTransactionType string

const (
	FxPurchase FxTransactionType = "PURCHASE"
	FxSale     FxTransactionType = "SALE"
)

// FxLot is a foreign-currency purchase lot with a remaining balance. Lots are
// consumed oldest-first and never deleted; a fully consumed lot stays behind
// as a zero-balance historical record. RemainingAmount only ever decreases.
type FxLot struct {
	FxLotID         string            `json:"fxLotID"`
	TransactionType FxTransactionType `json:"transactionType"`
	CurrencyCode    string            `json:"currencyCode"`
	OriginalAmount  decimal.Decimal   `json:"originalAmount"`
	RemainingAmount decimal.Decimal   `json:"remainingAmount"`
	ExchangeRate    decimal.Decimal   `json:"exchangeRate"` // cost per unit in the base currency
	LotDate         time.Time         `json:"lotDate"`
	CompanyID       string            `json:"companyID"`
	Reference       string            `json:"reference"`
	Version         int64             `json:"version"`
	AuditFields
}

// IsOpen reports whether the lot still has balance available for consumption.
func (l FxLot) IsOpen() bool {
	return l.RemainingAmount.IsPositive()
}

// FxConsumption records one lot's contribution to a consumption request.
// Rows are immutable after creation; many consumptions reference one lot.
type FxConsumption struct {
	FxConsumptionID string          `json:"fxConsumptionID"`
	FxLotID         string          `json:"fxLotID"`
	ConsumedAmount  decimal.Decimal `json:"consumedAmount"`
	ConsumedRate    decimal.Decimal `json:"consumedRate"` // the lot's rate at consumption time
	ConsumedCost    decimal.Decimal `json:"consumedCost"` // consumedAmount * consumedRate
	ConsumedDate    time.Time       `json:"consumedDate"`
	CompanyID       string          `json:"companyID"`
	Reference       string          `json:"reference"`
	AuditFields
}

// FxConsumeResult is the outcome of a FIFO consumption: the realized
// weighted-average rate is the cost basis callers compare against a
// transaction's stated rate to book FX gain or loss.
type FxConsumeResult struct {
	CurrencyCode        string          `json:"currencyCode"`
	ConsumedAmount      decimal.Decimal `json:"consumedAmount"`
	TotalCost           decimal.Decimal `json:"totalCost"`
	WeightedAverageRate decimal.Decimal `json:"weightedAverageRate"`
	Consumptions        []FxConsumption `json:"consumptions"`
}
