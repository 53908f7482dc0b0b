package dto

import (
	"time"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AddFxLotRequest defines the payload for recording a foreign-currency purchase lot.
type AddFxLotRequest struct {
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	ExchangeRate decimal.Decimal `json:"exchangeRate" binding:"required"`
	LotDate      *time.Time      `json:"lotDate"` // defaults to now
	Reference    string          `json:"reference"`
}

// ConsumeFxRequest defines the payload for a FIFO consumption.
type ConsumeFxRequest struct {
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Reference    string          `json:"reference"`
}

// FxLotResponse defines the data returned for a purchase lot.
type FxLotResponse struct {
	FxLotID         string          `json:"fxLotID"`
	CurrencyCode    string          `json:"currencyCode"`
	OriginalAmount  decimal.Decimal `json:"originalAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	ExchangeRate    decimal.Decimal `json:"exchangeRate"`
	LotDate         time.Time       `json:"lotDate"`
	Reference       string          `json:"reference"`
}

// FxConsumptionResponse defines the data returned for one consumption record.
type FxConsumptionResponse struct {
	FxConsumptionID string          `json:"fxConsumptionID"`
	FxLotID         string          `json:"fxLotID"`
	ConsumedAmount  decimal.Decimal `json:"consumedAmount"`
	ConsumedRate    decimal.Decimal `json:"consumedRate"`
	ConsumedCost    decimal.Decimal `json:"consumedCost"`
	ConsumedDate    time.Time       `json:"consumedDate"`
	Reference       string          `json:"reference"`
}

// ConsumeFxResponse defines the result of a FIFO consumption.
type ConsumeFxResponse struct {
	CurrencyCode        string                  `json:"currencyCode"`
	ConsumedAmount      decimal.Decimal         `json:"consumedAmount"`
	TotalCost           decimal.Decimal         `json:"totalCost"`
	WeightedAverageRate decimal.Decimal         `json:"weightedAverageRate"`
	Consumptions        []FxConsumptionResponse `json:"consumptions"`
}

// ToFxLotResponse converts a domain.FxLot to its response DTO.
func ToFxLotResponse(lot *domain.FxLot) FxLotResponse {
	return FxLotResponse{
		FxLotID:         lot.FxLotID,
		CurrencyCode:    lot.CurrencyCode,
		OriginalAmount:  lot.OriginalAmount,
		RemainingAmount: lot.RemainingAmount,
		ExchangeRate:    lot.ExchangeRate,
		LotDate:         lot.LotDate,
		Reference:       lot.Reference,
	}
}

// ToFxLotResponses converts a slice of lots.
func ToFxLotResponses(lots []domain.FxLot) []FxLotResponse {
	responses := make([]FxLotResponse, len(lots))
	for i := range lots {
		responses[i] = ToFxLotResponse(&lots[i])
	}
	return responses
}

// ToFxConsumptionResponse converts a domain.FxConsumption to its response DTO.
func ToFxConsumptionResponse(c *domain.FxConsumption) FxConsumptionResponse {
	return FxConsumptionResponse{
		FxConsumptionID: c.FxConsumptionID,
		FxLotID:         c.FxLotID,
		ConsumedAmount:  c.ConsumedAmount,
		ConsumedRate:    c.ConsumedRate,
		ConsumedCost:    c.ConsumedCost,
		ConsumedDate:    c.ConsumedDate,
		Reference:       c.Reference,
	}
}

// ToConsumeFxResponse converts a consumption result to its response DTO.
func ToConsumeFxResponse(res *domain.FxConsumeResult) ConsumeFxResponse {
	consumptions := make([]FxConsumptionResponse, len(res.Consumptions))
	for i := range res.Consumptions {
		consumptions[i] = ToFxConsumptionResponse(&res.Consumptions[i])
	}
	return ConsumeFxResponse{
		CurrencyCode:        res.CurrencyCode,
		ConsumedAmount:      res.ConsumedAmount,
		TotalCost:           res.TotalCost,
		WeightedAverageRate: res.WeightedAverageRate,
		Consumptions:        consumptions,
	}
}
