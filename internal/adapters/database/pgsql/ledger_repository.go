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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const ledgerEntryInsert = `
	INSERT INTO ledger_entries (ledger_entry_id, entry_date, document_number, document_type, document_id,
		description, account_code, account_name, debit_amount, credit_amount, currency_code, exchange_rate,
		local_debit_amount, local_credit_amount, counterparty_id, company_id, created_at, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
`

func ledgerEntryArgs(e domain.LedgerEntry) []any {
	return []any{
		e.LedgerEntryID,
		e.EntryDate,
		e.DocumentNumber,
		e.DocumentType,
		e.DocumentID,
		e.Description,
		e.AccountCode,
		e.AccountName,
		e.DebitAmount,
		e.CreditAmount,
		e.CurrencyCode,
		e.ExchangeRate,
		e.LocalDebitAmount,
		e.LocalCreditAmount,
		e.CounterpartyID,
		e.CompanyID,
		e.CreatedAt,
		e.CreatedBy,
	}
}

type PgxLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewPgxLedgerRepository creates a new repository for financial documents and
// their ledger projection rows.
func NewPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{pool: pool}
}

const ledgerEntryColumns = `ledger_entry_id, entry_date, document_number, document_type, document_id,
	description, account_code, account_name, debit_amount, credit_amount, currency_code, exchange_rate,
	local_debit_amount, local_credit_amount, counterparty_id, company_id, created_at, created_by`

func scanLedgerEntry(row pgx.Row) (domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(
		&e.LedgerEntryID,
		&e.EntryDate,
		&e.DocumentNumber,
		&e.DocumentType,
		&e.DocumentID,
		&e.Description,
		&e.AccountCode,
		&e.AccountName,
		&e.DebitAmount,
		&e.CreditAmount,
		&e.CurrencyCode,
		&e.ExchangeRate,
		&e.LocalDebitAmount,
		&e.LocalCreditAmount,
		&e.CounterpartyID,
		&e.CompanyID,
		&e.CreatedAt,
		&e.CreatedBy,
	)
	return e, err
}

const financialDocumentColumns = `document_id, document_number, document_type, description, amount,
	currency_code, exchange_rate, local_amount, payment_source, transfer_target, counterparty_id,
	document_date, company_id, created_at, created_by, last_updated_at, last_updated_by`

func scanFinancialDocument(row pgx.Row) (domain.FinancialDocument, error) {
	var d domain.FinancialDocument
	err := row.Scan(
		&d.DocumentID,
		&d.DocumentNumber,
		&d.DocumentType,
		&d.Description,
		&d.Amount,
		&d.CurrencyCode,
		&d.ExchangeRate,
		&d.LocalAmount,
		&d.PaymentSource,
		&d.TransferTarget,
		&d.CounterpartyID,
		&d.DocumentDate,
		&d.CompanyID,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	)
	return d, err
}

// SaveDocumentWithEntries persists a document header and its ledger rows in
// one transaction so a header can never exist without its balanced pair.
func (r *PgxLedgerRepository) SaveDocumentWithEntries(ctx context.Context, doc domain.FinancialDocument, entries []domain.LedgerEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	headerQuery := `
		INSERT INTO financial_documents (document_id, document_number, document_type, description, amount,
			currency_code, exchange_rate, local_amount, payment_source, transfer_target, counterparty_id,
			document_date, company_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, headerQuery,
		doc.DocumentID,
		doc.DocumentNumber,
		doc.DocumentType,
		doc.Description,
		doc.Amount,
		doc.CurrencyCode,
		doc.ExchangeRate,
		doc.LocalAmount,
		doc.PaymentSource,
		doc.TransferTarget,
		doc.CounterpartyID,
		doc.DocumentDate,
		doc.CompanyID,
		doc.CreatedAt,
		doc.CreatedBy,
		doc.LastUpdatedAt,
		doc.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert financial document %s: %w", doc.DocumentID, err)
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(ledgerEntryInsert, ledgerEntryArgs(e)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert ledger entries for document %s: %w", doc.DocumentID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}
	return nil
}

// ListEntriesByAccount returns ledger rows for an account code, newest first.
func (r *PgxLedgerRepository) ListEntriesByAccount(ctx context.Context, companyID, accountCode string, limit, offset int) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE company_id = $1 AND account_code = $2
		ORDER BY entry_date DESC, ledger_entry_id DESC
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.pool.Query(ctx, query, companyID, accountCode, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries for account %s: %w", accountCode, err)
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

// ListEntriesByDocument returns the rows written for one document, in the
// order they were inserted.
func (r *PgxLedgerRepository) ListEntriesByDocument(ctx context.Context, documentID string) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE document_id = $1
		ORDER BY ledger_entry_id ASC;
	`
	rows, err := r.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries for document %s: %w", documentID, err)
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

func collectLedgerEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindDocumentByID retrieves a Cost/Income/Transfer document header.
func (r *PgxLedgerRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.FinancialDocument, error) {
	query := `
		SELECT ` + financialDocumentColumns + `
		FROM financial_documents
		WHERE document_id = $1 AND NOT is_deleted;
	`
	doc, err := scanFinancialDocument(r.pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find financial document %s: %w", documentID, err)
	}
	return &doc, nil
}

// ListDocuments returns document headers for a company, newest first.
func (r *PgxLedgerRepository) ListDocuments(ctx context.Context, companyID string, docType *domain.DocumentType, limit, offset int) ([]domain.FinancialDocument, error) {
	query := `
		SELECT ` + financialDocumentColumns + `
		FROM financial_documents
		WHERE company_id = $1 AND NOT is_deleted AND ($2::text IS NULL OR document_type = $2)
		ORDER BY document_date DESC, document_number DESC
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.pool.Query(ctx, query, companyID, docType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.FinancialDocument
	for rows.Next() {
		d, err := scanFinancialDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan financial document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
