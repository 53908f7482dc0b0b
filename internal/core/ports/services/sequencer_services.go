package services

import (
	"context"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/agencyops/travel_ledger_app/internal/dto"
)

// SequencerSvcFacade issues gap-free, formatted document numbers. It is the
// only source of document identifiers; callers must never synthesize numbers
// themselves.
type SequencerSvcFacade interface {
	// NextNumber returns the next formatted number for (documentType, company),
	// creating the sequence row lazily on first use. It fails with
	// apperrors.ErrConcurrencyConflict after bounded retries.
	NextNumber(ctx context.Context, docType domain.DocumentType, companyID, userID string) (string, error)

	// GetSequence returns the current sequence row without advancing it.
	GetSequence(ctx context.Context, docType domain.DocumentType, companyID string) (*domain.DocumentNumber, error)

	// ConfigureSequence updates prefix/suffix/padding/reset-period settings.
	ConfigureSequence(ctx context.Context, docType domain.DocumentType, companyID string, req dto.ConfigureSequenceRequest, userID string) (*domain.DocumentNumber, error)
}
