package repositories

import (
	"context"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// VoucherReader defines read operations for vouchers.
type VoucherReader interface {
	// FindVoucherByID retrieves a voucher with its entries populated.
	FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// ListVouchers returns vouchers for a company, newest first, filtered by
	// status when one is given.
	ListVouchers(ctx context.Context, companyID string, status *domain.VoucherStatus, limit, offset int) ([]domain.Voucher, error)
}

// VoucherWriter defines write operations for vouchers.
type VoucherWriter interface {
	// SaveVoucher persists a voucher header and its entries in one DB transaction.
	SaveVoucher(ctx context.Context, voucher domain.Voucher, entries []domain.VoucherEntry) error

	// UpdateVoucherStatus persists a state transition on the header using the
	// Version column as a compare-and-swap token. A stale version surfaces as
	// apperrors.ErrConflict so the caller can reload and retry.
	UpdateVoucherStatus(ctx context.Context, voucher domain.Voucher) error

	// PostVoucher persists the Posted transition, the voucher's ledger rows and
	// the account balance changes in one DB transaction. The header update is
	// version-checked like UpdateVoucherStatus.
	PostVoucher(ctx context.Context, voucher domain.Voucher, ledgerRows []domain.LedgerEntry, balanceChanges map[string]decimal.Decimal) error
}

// VoucherRepositoryFacade combines all voucher repository interfaces.
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
}
