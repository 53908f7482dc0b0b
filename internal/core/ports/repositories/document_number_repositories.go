package repositories

import (
	"context"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
)

// DocumentNumberReader defines read operations for sequence rows.
type DocumentNumberReader interface {
	// FindDocumentNumber retrieves the sequence row for a (documentType, company)
	// pair, or apperrors.ErrNotFound when no row exists yet.
	FindDocumentNumber(ctx context.Context, docType domain.DocumentType, companyID string) (*domain.DocumentNumber, error)
}

// DocumentNumberWriter defines write operations for sequence rows.
type DocumentNumberWriter interface {
	// CreateDocumentNumber inserts a fresh sequence row. The (documentType,
	// company) pair is unique; a concurrent insert surfaces as apperrors.ErrDuplicate.
	CreateDocumentNumber(ctx context.Context, dn domain.DocumentNumber) error

	// UpdateDocumentNumber persists an advanced sequence row using its Version
	// as a compare-and-swap token. A stale version surfaces as apperrors.ErrConflict.
	UpdateDocumentNumber(ctx context.Context, dn domain.DocumentNumber) error
}

// DocumentNumberRepositoryFacade combines all sequence repository interfaces.
type DocumentNumberRepositoryFacade interface {
	DocumentNumberReader
	DocumentNumberWriter
}
