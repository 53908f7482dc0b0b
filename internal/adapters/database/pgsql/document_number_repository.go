package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

type PgxDocumentNumberRepository struct {
	pool *pgxpool.Pool
}

// NewPgxDocumentNumberRepository creates a new repository for document number sequences.
func NewPgxDocumentNumberRepository(pool *pgxpool.Pool) portsrepo.DocumentNumberRepositoryFacade {
	return &PgxDocumentNumberRepository{pool: pool}
}

// FindDocumentNumber retrieves the sequence row for a (documentType, company) pair.
func (r *PgxDocumentNumberRepository) FindDocumentNumber(ctx context.Context, docType domain.DocumentType, companyID string) (*domain.DocumentNumber, error) {
	query := `
		SELECT document_number_id, document_type, company_id, prefix, current_number, pad_length, suffix,
		       reset_date, reset_period, version, created_at, created_by, last_updated_at, last_updated_by
		FROM document_numbers
		WHERE document_type = $1 AND company_id = $2 AND NOT is_deleted;
	`
	var dn domain.DocumentNumber
	err := r.pool.QueryRow(ctx, query, docType, companyID).Scan(
		&dn.DocumentNumberID,
		&dn.DocumentType,
		&dn.CompanyID,
		&dn.Prefix,
		&dn.CurrentNumber,
		&dn.PadLength,
		&dn.Suffix,
		&dn.ResetDate,
		&dn.ResetPeriod,
		&dn.Version,
		&dn.CreatedAt,
		&dn.CreatedBy,
		&dn.LastUpdatedAt,
		&dn.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document number for %s/%s: %w", docType, companyID, err)
	}
	return &dn, nil
}

// CreateDocumentNumber inserts a fresh sequence row. A concurrent insert for
// the same (documentType, company) pair hits the unique constraint and is
// reported as apperrors.ErrDuplicate.
func (r *PgxDocumentNumberRepository) CreateDocumentNumber(ctx context.Context, dn domain.DocumentNumber) error {
	query := `
		INSERT INTO document_numbers (document_number_id, document_type, company_id, prefix, current_number,
			pad_length, suffix, reset_date, reset_period, version, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.pool.Exec(ctx, query,
		dn.DocumentNumberID,
		dn.DocumentType,
		dn.CompanyID,
		dn.Prefix,
		dn.CurrentNumber,
		dn.PadLength,
		dn.Suffix,
		dn.ResetDate,
		dn.ResetPeriod,
		dn.Version,
		dn.CreatedAt,
		dn.CreatedBy,
		dn.LastUpdatedAt,
		dn.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert document number %s: %w", dn.DocumentNumberID, err)
	}
	return nil
}

// UpdateDocumentNumber persists an advanced sequence row. The WHERE clause on
// the version column is the compare-and-swap; zero rows affected means another
// writer got there first.
func (r *PgxDocumentNumberRepository) UpdateDocumentNumber(ctx context.Context, dn domain.DocumentNumber) error {
	query := `
		UPDATE document_numbers
		SET prefix = $1, current_number = $2, pad_length = $3, suffix = $4, reset_date = $5,
		    reset_period = $6, version = version + 1, last_updated_at = $7, last_updated_by = $8
		WHERE document_number_id = $9 AND version = $10;
	`
	tag, err := r.pool.Exec(ctx, query,
		dn.Prefix,
		dn.CurrentNumber,
		dn.PadLength,
		dn.Suffix,
		dn.ResetDate,
		dn.ResetPeriod,
		dn.LastUpdatedAt,
		dn.LastUpdatedBy,
		dn.DocumentNumberID,
		dn.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update document number %s: %w", dn.DocumentNumberID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}
