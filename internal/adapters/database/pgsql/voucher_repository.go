package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
)

type PgxVoucherRepository struct {
	pool *pgxpool.Pool
}

// NewPgxVoucherRepository creates a new repository for vouchers.
func NewPgxVoucherRepository(pool *pgxpool.Pool) portsrepo.VoucherRepositoryFacade {
	return &PgxVoucherRepository{pool: pool}
}

const voucherColumns = `voucher_id, voucher_number, voucher_type, description, currency_code, voucher_date,
	reference, notes, status, is_posted, posted_at, posted_by, ticket_id, company_id, version,
	created_at, created_by, last_updated_at, last_updated_by`

func scanVoucher(row pgx.Row) (domain.Voucher, error) {
	var v domain.Voucher
	err := row.Scan(
		&v.VoucherID,
		&v.VoucherNumber,
		&v.VoucherType,
		&v.Description,
		&v.CurrencyCode,
		&v.VoucherDate,
		&v.Reference,
		&v.Notes,
		&v.Status,
		&v.IsPosted,
		&v.PostedAt,
		&v.PostedBy,
		&v.TicketID,
		&v.CompanyID,
		&v.Version,
		&v.CreatedAt,
		&v.CreatedBy,
		&v.LastUpdatedAt,
		&v.LastUpdatedBy,
	)
	return v, err
}

// FindVoucherByID retrieves a voucher header together with its entries.
func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	query := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE voucher_id = $1 AND NOT is_deleted;
	`
	voucher, err := scanVoucher(r.pool.QueryRow(ctx, query, voucherID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find voucher %s: %w", voucherID, err)
	}

	entries, err := r.findEntriesByVoucherID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	voucher.Entries = entries
	return &voucher, nil
}

func (r *PgxVoucherRepository) findEntriesByVoucherID(ctx context.Context, voucherID string) ([]domain.VoucherEntry, error) {
	query := `
		SELECT voucher_entry_id, voucher_id, account_id, amount, entry_type, description, currency_code,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM voucher_entries
		WHERE voucher_id = $1
		ORDER BY voucher_entry_id ASC;
	`
	rows, err := r.pool.Query(ctx, query, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for voucher %s: %w", voucherID, err)
	}
	defer rows.Close()

	var entries []domain.VoucherEntry
	for rows.Next() {
		var e domain.VoucherEntry
		if err := rows.Scan(
			&e.VoucherEntryID,
			&e.VoucherID,
			&e.AccountID,
			&e.Amount,
			&e.EntryType,
			&e.Description,
			&e.CurrencyCode,
			&e.CreatedAt,
			&e.CreatedBy,
			&e.LastUpdatedAt,
			&e.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan voucher entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListVouchers returns vouchers for a company, newest first, without entries.
func (r *PgxVoucherRepository) ListVouchers(ctx context.Context, companyID string, status *domain.VoucherStatus, limit, offset int) ([]domain.Voucher, error) {
	query := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE company_id = $1 AND NOT is_deleted AND ($2::text IS NULL OR status = $2)
		ORDER BY voucher_date DESC, voucher_number DESC
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.pool.Query(ctx, query, companyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query vouchers: %w", err)
	}
	defer rows.Close()

	var vouchers []domain.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

// SaveVoucher persists a new voucher header and its entries in one transaction.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher, entries []domain.VoucherEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	headerQuery := `
		INSERT INTO vouchers (voucher_id, voucher_number, voucher_type, description, currency_code, voucher_date,
			reference, notes, status, is_posted, posted_at, posted_by, ticket_id, company_id, version,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err = tx.Exec(ctx, headerQuery,
		voucher.VoucherID,
		voucher.VoucherNumber,
		voucher.VoucherType,
		voucher.Description,
		voucher.CurrencyCode,
		voucher.VoucherDate,
		voucher.Reference,
		voucher.Notes,
		voucher.Status,
		voucher.IsPosted,
		voucher.PostedAt,
		voucher.PostedBy,
		voucher.TicketID,
		voucher.CompanyID,
		voucher.Version,
		voucher.CreatedAt,
		voucher.CreatedBy,
		voucher.LastUpdatedAt,
		voucher.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert voucher %s: %w", voucher.VoucherID, err)
	}

	batch := &pgx.Batch{}
	entryQuery := `
		INSERT INTO voucher_entries (voucher_entry_id, voucher_id, account_id, amount, entry_type, description,
			currency_code, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	for _, e := range entries {
		batch.Queue(entryQuery,
			e.VoucherEntryID,
			e.VoucherID,
			e.AccountID,
			e.Amount,
			e.EntryType,
			e.Description,
			e.CurrencyCode,
			e.CreatedAt,
			e.CreatedBy,
			e.LastUpdatedAt,
			e.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert voucher entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit voucher: %w", err)
	}
	return nil
}

const voucherStatusUpdate = `
	UPDATE vouchers
	SET status = $1, is_posted = $2, posted_at = $3, posted_by = $4, version = version + 1,
	    last_updated_at = $5, last_updated_by = $6
	WHERE voucher_id = $7 AND version = $8;
`

// UpdateVoucherStatus persists a state transition using the version column as
// a compare-and-swap token. Zero rows affected means another writer got there
// first and the caller should reload and retry.
func (r *PgxVoucherRepository) UpdateVoucherStatus(ctx context.Context, voucher domain.Voucher) error {
	tag, err := r.pool.Exec(ctx, voucherStatusUpdate,
		voucher.Status,
		voucher.IsPosted,
		voucher.PostedAt,
		voucher.PostedBy,
		voucher.LastUpdatedAt,
		voucher.LastUpdatedBy,
		voucher.VoucherID,
		voucher.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update voucher %s status: %w", voucher.VoucherID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// PostVoucher writes the Posted transition, the voucher's ledger rows and the
// account balance changes atomically. The header update is version-checked;
// a stale version rolls everything back with apperrors.ErrConflict.
func (r *PgxVoucherRepository) PostVoucher(ctx context.Context, voucher domain.Voucher, ledgerRows []domain.LedgerEntry, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, voucherStatusUpdate,
		voucher.Status,
		voucher.IsPosted,
		voucher.PostedAt,
		voucher.PostedBy,
		voucher.LastUpdatedAt,
		voucher.LastUpdatedBy,
		voucher.VoucherID,
		voucher.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update voucher %s status: %w", voucher.VoucherID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}

	batch := &pgx.Batch{}
	for _, row := range ledgerRows {
		batch.Queue(ledgerEntryInsert, ledgerEntryArgs(row)...)
	}
	balanceQuery := `UPDATE accounts SET balance = balance + $1, last_updated_at = $2, last_updated_by = $3 WHERE account_id = $4;`
	for accountID, change := range balanceChanges {
		batch.Queue(balanceQuery, change, voucher.LastUpdatedAt, voucher.LastUpdatedBy, accountID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write posting rows for voucher %s: %w", voucher.VoucherID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit voucher posting: %w", err)
	}
	return nil
}
