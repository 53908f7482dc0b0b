package repositories

import (
	"context"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
)

// LedgerReader defines read operations for the append-only ledger projection.
type LedgerReader interface {
	// ListEntriesByAccount returns ledger rows for an account code, newest first.
	ListEntriesByAccount(ctx context.Context, companyID, accountCode string, limit, offset int) ([]domain.LedgerEntry, error)

	// ListEntriesByDocument returns the rows written for one document.
	ListEntriesByDocument(ctx context.Context, documentID string) ([]domain.LedgerEntry, error)

	// FindDocumentByID retrieves a Cost/Income/Transfer document header.
	FindDocumentByID(ctx context.Context, documentID string) (*domain.FinancialDocument, error)

	// ListDocuments returns document headers for a company, newest first.
	ListDocuments(ctx context.Context, companyID string, docType *domain.DocumentType, limit, offset int) ([]domain.FinancialDocument, error)
}

// LedgerWriter defines write operations for the ledger projection.
type LedgerWriter interface {
	// SaveDocumentWithEntries persists a document header and its balanced pair
	// of ledger rows in one DB transaction. If any row fails nothing is committed.
	SaveDocumentWithEntries(ctx context.Context, doc domain.FinancialDocument, entries []domain.LedgerEntry) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
