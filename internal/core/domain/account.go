package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account is a node in the company's chart of accounts. The hierarchy is kept
// as parent references by id; cycle checks happen on write, not by walking
// object graphs.
type Account struct {
	AccountID       string          `json:"accountID"`
	AccountCode     string          `json:"accountCode"` // unique per company
	AccountName     string          `json:"accountName"`
	AccountType     AccountType     `json:"accountType"`
	ParentAccountID string          `json:"parentAccountID"` // empty when root
	Balance         decimal.Decimal `json:"balance"`
	CurrencyCode    string          `json:"currencyCode"`
	IsActive        bool            `json:"isActive"`
	CompanyID       string          `json:"companyID"`
	AuditFields
}
