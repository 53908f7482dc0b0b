package dto

import (
	"time"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordCostRequest books an outgoing payment (ticket purchase, supplier bill).
// Foreign-currency costs are settled from the FX lot holdings, so no rate is
// supplied; the realized FIFO rate becomes the document's exchange rate.
type RecordCostRequest struct {
	Description    string          `json:"description" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3"`
	PaymentSource  string          `json:"paymentSource" binding:"required,oneof=CASH BANK"`
	CounterpartyID *string         `json:"counterpartyID"`
	DocumentDate   *time.Time      `json:"documentDate"` // defaults to now
	Reference      string          `json:"reference"`
}

// RecordIncomeRequest books an incoming payment. Foreign-currency income needs
// the caller-supplied acquisition rate; it opens a new FX lot at that rate.
type RecordIncomeRequest struct {
	Description    string           `json:"description" binding:"required"`
	Amount         decimal.Decimal  `json:"amount" binding:"required"`
	CurrencyCode   string           `json:"currencyCode" binding:"required,len=3"`
	ExchangeRate   *decimal.Decimal `json:"exchangeRate"` // required for foreign currency
	PaymentSource  string           `json:"paymentSource" binding:"required,oneof=CASH BANK"`
	CounterpartyID *string          `json:"counterpartyID"`
	DocumentDate   *time.Time       `json:"documentDate"`
	Reference      string           `json:"reference"`
}

// RecordTransferRequest books a movement between payment sources.
type RecordTransferRequest struct {
	Description  string           `json:"description" binding:"required"`
	Amount       decimal.Decimal  `json:"amount" binding:"required"`
	CurrencyCode string           `json:"currencyCode" binding:"required,len=3"`
	ExchangeRate *decimal.Decimal `json:"exchangeRate"` // required for foreign currency
	FromSource   string           `json:"fromSource" binding:"required,oneof=CASH BANK"`
	ToSource     string           `json:"toSource" binding:"required,oneof=CASH BANK"`
	DocumentDate *time.Time       `json:"documentDate"`
	Reference    string           `json:"reference"`
}

// ListDocumentsParams holds filtering and paging options for document listings.
type ListDocumentsParams struct {
	DocumentType *string `form:"documentType"`
	Limit        int     `form:"limit"`
	Offset       int     `form:"offset"`
}

// FinancialDocumentResponse defines the data returned for a Cost/Income/Transfer document.
type FinancialDocumentResponse struct {
	DocumentID     string          `json:"documentID"`
	DocumentNumber string          `json:"documentNumber"`
	DocumentType   string          `json:"documentType"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	CurrencyCode   string          `json:"currencyCode"`
	ExchangeRate   decimal.Decimal `json:"exchangeRate"`
	LocalAmount    decimal.Decimal `json:"localAmount"`
	PaymentSource  string          `json:"paymentSource"`
	TransferTarget string          `json:"transferTarget,omitempty"`
	CounterpartyID *string         `json:"counterpartyID,omitempty"`
	DocumentDate   time.Time       `json:"documentDate"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// LedgerEntryResponse defines the data returned for one ledger row.
type LedgerEntryResponse struct {
	LedgerEntryID     string           `json:"ledgerEntryID"`
	EntryDate         time.Time        `json:"entryDate"`
	DocumentNumber    string           `json:"documentNumber"`
	DocumentType      string           `json:"documentType"`
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
}

// ToFinancialDocumentResponse converts a domain.FinancialDocument to its response DTO.
func ToFinancialDocumentResponse(doc *domain.FinancialDocument) FinancialDocumentResponse {
	return FinancialDocumentResponse{
		DocumentID:     doc.DocumentID,
		DocumentNumber: doc.DocumentNumber,
		DocumentType:   string(doc.DocumentType),
		Description:    doc.Description,
		Amount:         doc.Amount,
		CurrencyCode:   doc.CurrencyCode,
		ExchangeRate:   doc.ExchangeRate,
		LocalAmount:    doc.LocalAmount,
		PaymentSource:  string(doc.PaymentSource),
		TransferTarget: string(doc.TransferTarget),
		CounterpartyID: doc.CounterpartyID,
		DocumentDate:   doc.DocumentDate,
		CreatedAt:      doc.CreatedAt,
		CreatedBy:      doc.CreatedBy,
	}
}

// ToLedgerEntryResponses converts a slice of ledger rows.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = LedgerEntryResponse{
			LedgerEntryID:     e.LedgerEntryID,
			EntryDate:         e.EntryDate,
			DocumentNumber:    e.DocumentNumber,
			DocumentType:      string(e.DocumentType),
			DocumentID:        e.DocumentID,
			Description:       e.Description,
			AccountCode:       e.AccountCode,
			AccountName:       e.AccountName,
			DebitAmount:       e.DebitAmount,
			CreditAmount:      e.CreditAmount,
			CurrencyCode:      e.CurrencyCode,
			ExchangeRate:      e.ExchangeRate,
			LocalDebitAmount:  e.LocalDebitAmount,
			LocalCreditAmount: e.LocalCreditAmount,
		}
	}
	return responses
}
