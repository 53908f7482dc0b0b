package repositories

import (
	"context"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FxLotUpdate carries a version-checked remaining-balance decrement for one lot.
type FxLotUpdate struct {
	FxLotID         string
	NewRemaining    decimal.Decimal
	ExpectedVersion int64
}

// FxReader defines read operations for FX lots and consumption records.
type FxReader interface {
	// ListOpenLots returns lots with remaining balance for (currency, company),
	// strictly ordered by (lot_date ASC, fx_lot_id ASC). The id is the tie-break
	// for same-date lots so creation order is preserved.
	ListOpenLots(ctx context.Context, currencyCode, companyID string) ([]domain.FxLot, error)

	// ListLots returns all lots for a company, optionally filtered by currency.
	ListLots(ctx context.Context, companyID string, currencyCode *string) ([]domain.FxLot, error)

	// FindLotByID retrieves a single lot.
	FindLotByID(ctx context.Context, fxLotID string) (*domain.FxLot, error)

	// ListConsumptions returns consumption records for a company, newest first.
	ListConsumptions(ctx context.Context, companyID string, fxLotID *string) ([]domain.FxConsumption, error)
}

// FxWriter defines write operations for FX lots and consumption records.
type FxWriter interface {
	// SaveLot inserts a new purchase lot.
	SaveLot(ctx context.Context, lot domain.FxLot) error

	// ApplyConsumption persists the outcome of one FIFO walk in a single DB
	// transaction: every lot decrement is a version-checked UPDATE and every
	// consumption record an INSERT. If any lot's version is stale the whole
	// transaction rolls back with apperrors.ErrConflict, leaving no partial write.
	ApplyConsumption(ctx context.Context, updates []FxLotUpdate, consumptions []domain.FxConsumption) error
}

// FxRepositoryFacade combines all FX repository interfaces.
type FxRepositoryFacade interface {
	FxReader
	FxWriter
}
