package services

import (
	"context"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/agencyops/travel_ledger_app/internal/dto"
)

// FxSvcFacade tracks foreign-currency purchase lots and consumes them
// oldest-first to compute realized cost basis.
type FxSvcFacade interface {
	// AddLot records an acquisition of foreign currency as a new purchase lot.
	AddLot(ctx context.Context, companyID string, req dto.AddFxLotRequest, userID string) (*domain.FxLot, error)

	// Consume draws the requested amount from open lots in FIFO order. For the
	// base currency (or a non-positive amount) it succeeds trivially with rate 1
	// and no lot movement. It fails atomically with
	// apperrors.ErrInsufficientBalance when the open lots cannot cover the request.
	Consume(ctx context.Context, companyID string, req dto.ConsumeFxRequest, userID string) (*domain.FxConsumeResult, error)

	// ListLots returns the company's lots, optionally filtered by currency.
	ListLots(ctx context.Context, companyID string, currencyCode *string) ([]domain.FxLot, error)

	// ListConsumptions returns the company's consumption records.
	ListConsumptions(ctx context.Context, companyID string, fxLotID *string) ([]domain.FxConsumption, error)
}
