package dto

import (
	"time"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the payload for creating a chart-of-accounts node.
type CreateAccountRequest struct {
	AccountCode     string `json:"accountCode" binding:"required"`
	AccountName     string `json:"accountName" binding:"required"`
	AccountType     string `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	CurrencyCode    string `json:"currencyCode" binding:"required,len=3"`
	ParentAccountID string `json:"parentAccountID"`
}

// UpdateAccountRequest defines partial updates to an account.
type UpdateAccountRequest struct {
	AccountName     *string `json:"accountName"`
	ParentAccountID *string `json:"parentAccountID"`
	IsActive        *bool   `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string          `json:"accountID"`
	AccountCode     string          `json:"accountCode"`
	AccountName     string          `json:"accountName"`
	AccountType     string          `json:"accountType"`
	ParentAccountID string          `json:"parentAccountID,omitempty"`
	Balance         decimal.Decimal `json:"balance"`
	CurrencyCode    string          `json:"currencyCode"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		AccountCode:     acc.AccountCode,
		AccountName:     acc.AccountName,
		AccountType:     string(acc.AccountType),
		ParentAccountID: acc.ParentAccountID,
		Balance:         acc.Balance,
		CurrencyCode:    acc.CurrencyCode,
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
	}
}

// ToAccountResponses converts a slice of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
