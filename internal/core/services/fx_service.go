package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/internal/dto"
	"github.com/agencyops/travel_ledger_app/internal/middleware"
)

// fxService maintains foreign-currency purchase lots and consumes them
// oldest-first. A consumption either applies completely or not at all: the
// sufficiency check runs before any write, and the repository applies all lot
// decrements and consumption inserts in a single version-checked DB
// transaction.
type fxService struct {
	repo         portsrepo.FxRepositoryFacade
	clock        portssvc.Clock
	baseCurrency string
}

// NewFxService creates the FX FIFO engine. baseCurrency is the local currency
// that needs no FX bookkeeping.
func NewFxService(repo portsrepo.FxRepositoryFacade, clock portssvc.Clock, baseCurrency string) portssvc.FxSvcFacade {
	return &fxService{
		repo:         repo,
		clock:        clock,
		baseCurrency: strings.ToUpper(baseCurrency),
	}
}

var _ portssvc.FxSvcFacade = (*fxService)(nil)

// AddLot implements portssvc.FxSvcFacade.
func (s *fxService) AddLot(ctx context.Context, companyID string, req dto.AddFxLotRequest, userID string) (*domain.FxLot, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currency == s.baseCurrency {
		return nil, fmt.Errorf("%w: %s is the base currency and needs no FX lots", apperrors.ErrValidation, currency)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: lot amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}
	if !req.ExchangeRate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive, got %s", apperrors.ErrValidation, req.ExchangeRate)
	}

	now := s.clock.Now()
	lotDate := now
	if req.LotDate != nil {
		lotDate = *req.LotDate
	}

	lot := domain.FxLot{
		FxLotID:         uuid.NewString(),
		TransactionType: domain.FxPurchase,
		CurrencyCode:    currency,
		OriginalAmount:  req.Amount.Round(2),
		RemainingAmount: req.Amount.Round(2),
		ExchangeRate:    req.ExchangeRate.Round(6),
		LotDate:         lotDate,
		CompanyID:       companyID,
		Reference:       req.Reference,
		Version:         1,
		AuditFields:     domain.NewAuditFields(now, userID),
	}

	if err := s.repo.SaveLot(ctx, lot); err != nil {
		logger.Error("Failed to save FX lot", slog.String("error", err.Error()), slog.String("currency", currency))
		return nil, fmt.Errorf("failed to save fx lot: %w", err)
	}

	logger.Info("FX lot recorded",
		slog.String("fx_lot_id", lot.FxLotID),
		slog.String("currency", currency),
		slog.String("amount", lot.OriginalAmount.String()),
	)
	return &lot, nil
}

// Consume implements portssvc.FxSvcFacade.
func (s *fxService) Consume(ctx context.Context, companyID string, req dto.ConsumeFxRequest, userID string) (*domain.FxConsumeResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	amount := req.Amount.Round(2)

	// Local-currency transactions and non-positive amounts need no FX
	// bookkeeping; they pass through at rate 1.
	if currency == s.baseCurrency || !amount.IsPositive() {
		return &domain.FxConsumeResult{
			CurrencyCode:        currency,
			ConsumedAmount:      amount,
			TotalCost:           amount,
			WeightedAverageRate: decimal.NewFromInt(1),
		}, nil
	}

	for attempt := 1; attempt <= maxSequenceRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := s.consumeOnce(ctx, companyID, currency, amount, req.Reference, userID)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}

		logger.Warn("FX lot version conflict, retrying",
			slog.String("currency", currency),
			slog.String("company_id", companyID),
			slog.Int("attempt", attempt),
		)
		if err := sleepBackoff(ctx, attempt); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: concurrent consumption of %s lots for company %s",
		apperrors.ErrConcurrencyConflict, currency, companyID)
}

// consumeOnce walks the open lots oldest-first and applies the consumption in
// one repository transaction. A stale lot version surfaces as
// apperrors.ErrConflict for the caller's retry loop.
func (s *fxService) consumeOnce(ctx context.Context, companyID, currency string, amount decimal.Decimal, reference, userID string) (*domain.FxConsumeResult, error) {
	lots, err := s.repo.ListOpenLots(ctx, currency, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open %s lots: %w", currency, err)
	}

	available := decimal.Zero
	for _, lot := range lots {
		available = available.Add(lot.RemainingAmount)
	}
	if available.LessThan(amount) {
		return nil, fmt.Errorf("%w: available %s %s, requested %s",
			apperrors.ErrInsufficientBalance, available, currency, amount)
	}

	now := s.clock.Now()
	left := amount
	totalCost := decimal.Zero
	updates := make([]portsrepo.FxLotUpdate, 0, len(lots))
	consumptions := make([]domain.FxConsumption, 0, len(lots))

	for _, lot := range lots {
		if !left.IsPositive() {
			break
		}
		take := decimal.Min(left, lot.RemainingAmount)
		cost := take.Mul(lot.ExchangeRate)
		totalCost = totalCost.Add(cost)
		left = left.Sub(take)

		updates = append(updates, portsrepo.FxLotUpdate{
			FxLotID:         lot.FxLotID,
			NewRemaining:    lot.RemainingAmount.Sub(take),
			ExpectedVersion: lot.Version,
		})
		consumptions = append(consumptions, domain.FxConsumption{
			FxConsumptionID: uuid.NewString(),
			FxLotID:         lot.FxLotID,
			ConsumedAmount:  take,
			ConsumedRate:    lot.ExchangeRate,
			ConsumedCost:    cost,
			ConsumedDate:    now,
			CompanyID:       companyID,
			Reference:       reference,
			AuditFields:     domain.NewAuditFields(now, userID),
		})
	}

	if err := s.repo.ApplyConsumption(ctx, updates, consumptions); err != nil {
		return nil, err
	}

	return &domain.FxConsumeResult{
		CurrencyCode:        currency,
		ConsumedAmount:      amount,
		TotalCost:           totalCost,
		WeightedAverageRate: totalCost.Div(amount).Round(6),
		Consumptions:        consumptions,
	}, nil
}

// ListLots implements portssvc.FxSvcFacade.
func (s *fxService) ListLots(ctx context.Context, companyID string, currencyCode *string) ([]domain.FxLot, error) {
	if currencyCode != nil {
		normalized := strings.ToUpper(strings.TrimSpace(*currencyCode))
		currencyCode = &normalized
	}
	lots, err := s.repo.ListLots(ctx, companyID, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list fx lots: %w", err)
	}
	return lots, nil
}

// ListConsumptions implements portssvc.FxSvcFacade.
func (s *fxService) ListConsumptions(ctx context.Context, companyID string, fxLotID *string) ([]domain.FxConsumption, error) {
	consumptions, err := s.repo.ListConsumptions(ctx, companyID, fxLotID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fx consumptions: %w", err)
	}
	return consumptions, nil
}
