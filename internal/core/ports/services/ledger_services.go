package services

import (
	"context"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/agencyops/travel_ledger_app/internal/dto"
)

// AccountRef identifies a chart-of-accounts posting target by code and name.
type AccountRef struct {
	Code string
	Name string
}

// AccountResolver maps document context to posting accounts. It is a
// pluggable policy so the ledger projection stays agnostic of any one
// company's chart of accounts.
type AccountResolver interface {
	// SourceAccount resolves the asset account a payment moved through.
	SourceAccount(source domain.PaymentSource) (AccountRef, error)

	// ExpenseAccount resolves the account debited for cost documents.
	ExpenseAccount() AccountRef

	// RevenueAccount resolves the account credited for income documents.
	RevenueAccount() AccountRef
}

// LedgerSvcFacade records Cost/Income/Transfer documents and their derived
// ledger rows — the simplified parallel path that mirrors the double-entry
// effect without going through the voucher aggregate.
type LedgerSvcFacade interface {
	// RecordCost books an outgoing payment. Foreign-currency costs consume FX
	// lots; the realized FIFO rate becomes the document's exchange rate.
	RecordCost(ctx context.Context, companyID string, req dto.RecordCostRequest, userID string) (*domain.FinancialDocument, error)

	// RecordIncome books an incoming payment. Foreign-currency income creates a
	// new FX lot at the stated rate.
	RecordIncome(ctx context.Context, companyID string, req dto.RecordIncomeRequest, userID string) (*domain.FinancialDocument, error)

	// RecordTransfer books a movement between payment sources.
	RecordTransfer(ctx context.Context, companyID string, req dto.RecordTransferRequest, userID string) (*domain.FinancialDocument, error)

	GetDocumentByID(ctx context.Context, companyID, documentID string) (*domain.FinancialDocument, error)

	ListDocuments(ctx context.Context, companyID string, params dto.ListDocumentsParams) ([]domain.FinancialDocument, error)

	ListEntriesByAccount(ctx context.Context, companyID, accountCode string, limit, offset int) ([]domain.LedgerEntry, error)

	ListEntriesByDocument(ctx context.Context, companyID, documentID string) ([]domain.LedgerEntry, error)
}
