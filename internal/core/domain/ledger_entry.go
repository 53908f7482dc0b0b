package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSource identifies where the money for a document moved through.
type PaymentSource string

const (
	PaymentSourceCash PaymentSource = "CASH"
	PaymentSourceBank PaymentSource = "BANK"
)

// LedgerEntry is a denormalized, append-only accounting row. One document
// produces at least two balanced rows; rows are never updated or deleted once
// written (they are the audit trail).
type LedgerEntry struct {
	LedgerEntryID     string           `json:"ledgerEntryID"`
	EntryDate         time.Time        `json:"entryDate"`
	DocumentNumber    string           `json:"documentNumber"`
	DocumentType      DocumentType     `json:"documentType"`
	DocumentID        string           `json:"documentID"`
	Description       string           `json:"description"`
	AccountCode       string           `json:"accountCode"`
	AccountName       string           `json:"accountName"`
	DebitAmount       decimal.Decimal  `json:"debitAmount"`
	CreditAmount      decimal.Decimal  `json:"creditAmount"`
	CurrencyCode      string           `json:"currencyCode"`
	ExchangeRate      *decimal.Decimal `json:"exchangeRate,omitempty"`
	LocalDebitAmount  decimal.Decimal  `json:"localDebitAmount"`
	LocalCreditAmount decimal.Decimal  `json:"localCreditAmount"`
	CounterpartyID    *string          `json:"counterpartyID,omitempty"`
	CompanyID         string           `json:"companyID"`
	CreatedAt         time.Time        `json:"createdAt"`
	CreatedBy         string           `json:"createdBy"`
}
