package services

import (
	"context"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/agencyops/travel_ledger_app/internal/dto"
)

// VoucherSvcFacade manages the double-entry voucher aggregate and its
// approval state machine.
type VoucherSvcFacade interface {
	// CreateVoucher validates entries (balance, accounts, currency), pulls a
	// voucher number from the sequencer and persists header plus entries.
	CreateVoucher(ctx context.Context, companyID string, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error)

	GetVoucherByID(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error)

	ListVouchers(ctx context.Context, companyID string, params dto.ListVouchersParams) ([]domain.Voucher, error)

	// SubmitVoucher moves a balanced draft to Pending.
	SubmitVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error)

	// ApproveVoucher accepts a pending voucher.
	ApproveVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error)

	// RejectVoucher refuses a pending voucher; terminal.
	RejectVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error)

	// PostVoucher writes an approved, balanced voucher into the permanent
	// record together with its ledger rows and account balance changes.
	PostVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error)

	// UnpostVoucher reverts a posted voucher to Approved. Ledger history stays.
	UnpostVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error)

	// CancelVoucher terminates an unposted voucher.
	CancelVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error)
}
