package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/internal/dto"
	"github.com/agencyops/travel_ledger_app/internal/middleware"
)

const (
	maxSequenceRetries = 3
	retryBackoffStep   = 100 * time.Millisecond
)

// sequencerService issues gap-free document numbers. A process-wide mutex
// serializes local callers around the read-modify-write; the Version column
// on the row guards against other server instances, with a bounded retry loop
// on conflict. Document issuance is not a hot path, so one lock for the whole
// sequencer is enough.
type sequencerService struct {
	repo  portsrepo.DocumentNumberRepositoryFacade
	clock portssvc.Clock
	mu    sync.Mutex
}

// NewSequencerService creates a new document number sequencer.
func NewSequencerService(repo portsrepo.DocumentNumberRepositoryFacade, clock portssvc.Clock) portssvc.SequencerSvcFacade {
	return &sequencerService{repo: repo, clock: clock}
}

var _ portssvc.SequencerSvcFacade = (*sequencerService)(nil)

// NextNumber implements portssvc.SequencerSvcFacade.
func (s *sequencerService) NextNumber(ctx context.Context, docType domain.DocumentType, companyID, userID string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if companyID == "" {
		return "", fmt.Errorf("%w: company ID is required", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; attempt <= maxSequenceRetries; attempt++ {
		// Abort before any mutation when the caller has given up.
		if err := ctx.Err(); err != nil {
			return "", err
		}

		formatted, err := s.advanceOnce(ctx, docType, companyID, userID)
		if err == nil {
			return formatted, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrDuplicate) {
			return "", err
		}

		logger.Warn("Document number conflict, retrying",
			slog.String("document_type", string(docType)),
			slog.String("company_id", companyID),
			slog.Int("attempt", attempt),
		)
		if err := sleepBackoff(ctx, attempt); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: could not issue %s number for company %s after %d attempts",
		apperrors.ErrConcurrencyConflict, docType, companyID, maxSequenceRetries)
}

// advanceOnce performs one load-or-create, reset-check, increment, persist cycle.
func (s *sequencerService) advanceOnce(ctx context.Context, docType domain.DocumentType, companyID, userID string) (string, error) {
	now := s.clock.Now()

	dn, err := s.repo.FindDocumentNumber(ctx, docType, companyID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// First request for this (type, company) pair creates the row lazily.
		fresh := domain.NewDocumentNumber(uuid.NewString(), docType, companyID, now, userID)
		formatted := fresh.Advance(now)
		if err := s.repo.CreateDocumentNumber(ctx, fresh); err != nil {
			return "", err
		}
		return formatted, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load document number for %s/%s: %w", docType, companyID, err)
	}

	formatted := dn.Advance(now)
	dn.Touch(now, userID)
	if err := s.repo.UpdateDocumentNumber(ctx, *dn); err != nil {
		return "", err
	}
	return formatted, nil
}

// GetSequence implements portssvc.SequencerSvcFacade.
func (s *sequencerService) GetSequence(ctx context.Context, docType domain.DocumentType, companyID string) (*domain.DocumentNumber, error) {
	dn, err := s.repo.FindDocumentNumber(ctx, docType, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document number for %s/%s: %w", docType, companyID, err)
	}
	return dn, nil
}

// ConfigureSequence implements portssvc.SequencerSvcFacade.
func (s *sequencerService) ConfigureSequence(ctx context.Context, docType domain.DocumentType, companyID string, req dto.ConfigureSequenceRequest, userID string) (*domain.DocumentNumber, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.PadLength != nil && (*req.PadLength < 1 || *req.PadLength > 12) {
		return nil, fmt.Errorf("%w: pad length must be between 1 and 12", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; attempt <= maxSequenceRetries; attempt++ {
		now := s.clock.Now()

		dn, err := s.repo.FindDocumentNumber(ctx, docType, companyID)
		if errors.Is(err, apperrors.ErrNotFound) {
			fresh := domain.NewDocumentNumber(uuid.NewString(), docType, companyID, now, userID)
			dn = &fresh
			applySequenceSettings(dn, req)
			if err := s.repo.CreateDocumentNumber(ctx, *dn); err != nil {
				if errors.Is(err, apperrors.ErrDuplicate) {
					continue
				}
				return nil, err
			}
			return dn, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load document number for %s/%s: %w", docType, companyID, err)
		}

		applySequenceSettings(dn, req)
		dn.Touch(now, userID)
		if err := s.repo.UpdateDocumentNumber(ctx, *dn); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				logger.Warn("Sequence settings conflict, retrying", slog.Int("attempt", attempt))
				if err := sleepBackoff(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}
		return dn, nil
	}

	return nil, fmt.Errorf("%w: could not update %s sequence settings for company %s",
		apperrors.ErrConcurrencyConflict, docType, companyID)
}

func applySequenceSettings(dn *domain.DocumentNumber, req dto.ConfigureSequenceRequest) {
	if req.Prefix != nil {
		dn.Prefix = *req.Prefix
	}
	if req.Suffix != nil {
		dn.Suffix = *req.Suffix
	}
	if req.PadLength != nil {
		dn.PadLength = *req.PadLength
	}
	if req.ResetPeriod != nil {
		dn.ResetPeriod = domain.ResetPeriod(*req.ResetPeriod)
	}
}

// sleepBackoff waits 100ms x attempt, aborting early on context cancellation.
func sleepBackoff(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(retryBackoffStep * time.Duration(attempt)):
		return nil
	}
}
