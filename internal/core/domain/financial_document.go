package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialDocument is the header row for the simplified Cost/Income/Transfer
// paths that bypass the voucher aggregate. Each document carries a sequencer
// number and produces a balanced pair of ledger entries when recorded.
type FinancialDocument struct {
	DocumentID     string          `json:"documentID"`
	DocumentNumber string          `json:"documentNumber"`
	DocumentType   DocumentType    `json:"documentType"` // COST, INCOME or TRANSFER
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	CurrencyCode   string          `json:"currencyCode"`
	ExchangeRate   decimal.Decimal `json:"exchangeRate"` // realized rate against the base currency
	LocalAmount    decimal.Decimal `json:"localAmount"`  // amount * exchangeRate
	PaymentSource  PaymentSource   `json:"paymentSource"`
	// TransferTarget is the receiving side of a TRANSFER document; unused otherwise.
	TransferTarget PaymentSource `json:"transferTarget,omitempty"`
	CounterpartyID *string       `json:"counterpartyID,omitempty"`
	DocumentDate   time.Time     `json:"documentDate"`
	CompanyID      string        `json:"companyID"`
	AuditFields
}
