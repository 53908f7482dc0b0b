package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
)

type PgxFxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxFxRepository creates a new repository for FX lots and consumption records.
func NewPgxFxRepository(pool *pgxpool.Pool) portsrepo.FxRepositoryFacade {
	return &PgxFxRepository{pool: pool}
}

const fxLotColumns = `fx_lot_id, transaction_type, currency_code, original_amount, remaining_amount,
	exchange_rate, lot_date, company_id, reference, version, created_at, created_by, last_updated_at, last_updated_by`

func scanFxLot(row pgx.Row) (domain.FxLot, error) {
	var lot domain.FxLot
	err := row.Scan(
		&lot.FxLotID,
		&lot.TransactionType,
		&lot.CurrencyCode,
		&lot.OriginalAmount,
		&lot.RemainingAmount,
		&lot.ExchangeRate,
		&lot.LotDate,
		&lot.CompanyID,
		&lot.Reference,
		&lot.Version,
		&lot.CreatedAt,
		&lot.CreatedBy,
		&lot.LastUpdatedAt,
		&lot.LastUpdatedBy,
	)
	return lot, err
}

// ListOpenLots returns the FIFO candidates: open purchase lots ordered by
// (lot_date, fx_lot_id). The id tie-break keeps same-date lots in creation order.
func (r *PgxFxRepository) ListOpenLots(ctx context.Context, currencyCode, companyID string) ([]domain.FxLot, error) {
	query := `
		SELECT ` + fxLotColumns + `
		FROM fx_transactions
		WHERE currency_code = $1 AND company_id = $2 AND transaction_type = $3
		  AND remaining_amount > 0 AND NOT is_deleted
		ORDER BY lot_date ASC, fx_lot_id ASC;
	`
	rows, err := r.pool.Query(ctx, query, currencyCode, companyID, domain.FxPurchase)
	if err != nil {
		return nil, fmt.Errorf("failed to query open %s lots: %w", currencyCode, err)
	}
	defer rows.Close()

	var lots []domain.FxLot
	for rows.Next() {
		lot, err := scanFxLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fx lot: %w", err)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// ListLots returns all lots for a company, optionally filtered by currency.
func (r *PgxFxRepository) ListLots(ctx context.Context, companyID string, currencyCode *string) ([]domain.FxLot, error) {
	query := `
		SELECT ` + fxLotColumns + `
		FROM fx_transactions
		WHERE company_id = $1 AND NOT is_deleted AND ($2::text IS NULL OR currency_code = $2)
		ORDER BY lot_date DESC, fx_lot_id DESC;
	`
	rows, err := r.pool.Query(ctx, query, companyID, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query fx lots: %w", err)
	}
	defer rows.Close()

	var lots []domain.FxLot
	for rows.Next() {
		lot, err := scanFxLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fx lot: %w", err)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// FindLotByID retrieves a single lot.
func (r *PgxFxRepository) FindLotByID(ctx context.Context, fxLotID string) (*domain.FxLot, error) {
	query := `
		SELECT ` + fxLotColumns + `
		FROM fx_transactions
		WHERE fx_lot_id = $1 AND NOT is_deleted;
	`
	lot, err := scanFxLot(r.pool.QueryRow(ctx, query, fxLotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fx lot %s: %w", fxLotID, err)
	}
	return &lot, nil
}

// ListConsumptions returns consumption records, newest first.
func (r *PgxFxRepository) ListConsumptions(ctx context.Context, companyID string, fxLotID *string) ([]domain.FxConsumption, error) {
	query := `
		SELECT fx_consumption_id, fx_lot_id, consumed_amount, consumed_rate, consumed_cost,
		       consumed_date, company_id, reference, created_at, created_by, last_updated_at, last_updated_by
		FROM fx_consumptions
		WHERE company_id = $1 AND ($2::text IS NULL OR fx_lot_id = $2)
		ORDER BY consumed_date DESC, fx_consumption_id DESC;
	`
	rows, err := r.pool.Query(ctx, query, companyID, fxLotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fx consumptions: %w", err)
	}
	defer rows.Close()

	var consumptions []domain.FxConsumption
	for rows.Next() {
		var c domain.FxConsumption
		if err := rows.Scan(
			&c.FxConsumptionID,
			&c.FxLotID,
			&c.ConsumedAmount,
			&c.ConsumedRate,
			&c.ConsumedCost,
			&c.ConsumedDate,
			&c.CompanyID,
			&c.Reference,
			&c.CreatedAt,
			&c.CreatedBy,
			&c.LastUpdatedAt,
			&c.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fx consumption: %w", err)
		}
		consumptions = append(consumptions, c)
	}
	return consumptions, rows.Err()
}

// SaveLot inserts a new purchase lot.
func (r *PgxFxRepository) SaveLot(ctx context.Context, lot domain.FxLot) error {
	query := `
		INSERT INTO fx_transactions (fx_lot_id, transaction_type, currency_code, original_amount, remaining_amount,
			exchange_rate, lot_date, company_id, reference, version, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.pool.Exec(ctx, query,
		lot.FxLotID,
		lot.TransactionType,
		lot.CurrencyCode,
		lot.OriginalAmount,
		lot.RemainingAmount,
		lot.ExchangeRate,
		lot.LotDate,
		lot.CompanyID,
		lot.Reference,
		lot.Version,
		lot.CreatedAt,
		lot.CreatedBy,
		lot.LastUpdatedAt,
		lot.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fx lot %s: %w", lot.FxLotID, err)
	}
	return nil
}

// ApplyConsumption applies all lot decrements and consumption inserts of one
// FIFO walk in a single DB transaction. Every decrement is version-checked;
// a stale version rolls the whole transaction back with apperrors.ErrConflict
// so no partial consumption can ever be committed.
func (r *PgxFxRepository) ApplyConsumption(ctx context.Context, updates []portsrepo.FxLotUpdate, consumptions []domain.FxConsumption) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	updateQuery := `
		UPDATE fx_transactions
		SET remaining_amount = $1, version = version + 1, last_updated_at = NOW()
		WHERE fx_lot_id = $2 AND version = $3;
	`
	for _, u := range updates {
		tag, err := tx.Exec(ctx, updateQuery, u.NewRemaining, u.FxLotID, u.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("failed to update fx lot %s: %w", u.FxLotID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrConflict
		}
	}

	batch := &pgx.Batch{}
	insertQuery := `
		INSERT INTO fx_consumptions (fx_consumption_id, fx_lot_id, consumed_amount, consumed_rate, consumed_cost,
			consumed_date, company_id, reference, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, c := range consumptions {
		batch.Queue(insertQuery,
			c.FxConsumptionID,
			c.FxLotID,
			c.ConsumedAmount,
			c.ConsumedRate,
			c.ConsumedCost,
			c.ConsumedDate,
			c.CompanyID,
			c.Reference,
			c.CreatedAt,
			c.CreatedBy,
			c.LastUpdatedAt,
			c.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert fx consumptions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit fx consumption: %w", err)
	}
	return nil
}
