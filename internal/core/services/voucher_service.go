package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portsrepo "github.com/agencyops/travel_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/internal/dto"
	"github.com/agencyops/travel_ledger_app/internal/middleware"
)

var (
	ErrVoucherMinEntries  = errors.New("voucher must have at least two entries")
	ErrVoucherMinAccounts = errors.New("voucher must affect at least two different accounts")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountCurrency    = errors.New("account currency does not match voucher currency")
)

// voucherService provides the double-entry voucher operations and the
// approve/post state machine around them.
type voucherService struct {
	voucherRepo portsrepo.VoucherRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	sequencer   portssvc.SequencerSvcFacade
	clock       portssvc.Clock
}

// NewVoucherService creates a new VoucherService.
func NewVoucherService(voucherRepo portsrepo.VoucherRepositoryFacade, accountSvc portssvc.AccountSvcFacade, sequencer portssvc.SequencerSvcFacade, clock portssvc.Clock) portssvc.VoucherSvcFacade {
	return &voucherService{
		voucherRepo: voucherRepo,
		accountSvc:  accountSvc,
		sequencer:   sequencer,
		clock:       clock,
	}
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

// getSignedAmount applies the correct sign to an entry amount based on account
// type and entry type.
// DEBIT to ASSET/EXPENSE -> positive; CREDIT to ASSET/EXPENSE -> negative;
// DEBIT to LIABILITY/EQUITY/REVENUE -> negative; CREDIT -> positive.
func (s *voucherService) getSignedAmount(entry domain.VoucherEntry, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := entry.Amount
	isDebit := entry.EntryType == domain.Debit

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, entry.AccountID)
	}
	return signedAmount, nil
}

// CreateVoucher implements portssvc.VoucherSvcFacade.
// The voucher starts in Draft; balance is enforced at Submit and Post, so an
// unbalanced draft can be saved and corrected later.
func (s *voucherService) CreateVoucher(ctx context.Context, companyID string, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Entries) < 2 {
		return nil, ErrVoucherMinEntries
	}

	accountSet := make(map[string]bool)
	for _, e := range req.Entries {
		accountSet[e.AccountID] = true
	}
	if len(accountSet) < 2 {
		return nil, ErrVoucherMinAccounts
	}

	now := s.clock.Now()
	voucherID := uuid.NewString()

	entries := make([]domain.VoucherEntry, len(req.Entries))
	accountIDs := make([]string, 0, len(req.Entries))
	for i, entryReq := range req.Entries {
		if entryReq.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: entry amount must be positive for account %s", apperrors.ErrValidation, entryReq.AccountID)
		}
		entries[i] = domain.VoucherEntry{
			VoucherEntryID: uuid.NewString(),
			VoucherID:      voucherID,
			AccountID:      entryReq.AccountID,
			Amount:         entryReq.Amount.Round(2),
			EntryType:      domain.EntryType(entryReq.EntryType),
			Description:    entryReq.Description,
			CurrencyCode:   req.CurrencyCode,
			AuditFields:    domain.NewAuditFields(now, creatorUserID),
		}
		accountIDs = append(accountIDs, entryReq.AccountID)
	}

	// Every referenced account must exist in this company, be active and
	// carry the voucher's currency.
	accountsMap, err := s.accountSvc.GetAccountsByIDs(ctx, companyID, uniqueStrings(accountIDs))
	if err != nil {
		logger.Error("Failed to fetch accounts for voucher creation", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for id := range accountSet {
		acc, found := accountsMap[id]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		if acc.CurrencyCode != req.CurrencyCode {
			return nil, fmt.Errorf("%w: account currency %s does not match voucher currency %s for account %s",
				ErrAccountCurrency, acc.CurrencyCode, req.CurrencyCode, id)
		}
	}

	voucherNumber, err := s.sequencer.NextNumber(ctx, domain.DocumentTypeVoucher, companyID, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue voucher number: %w", err)
	}

	voucher := domain.Voucher{
		VoucherID:     voucherID,
		VoucherNumber: voucherNumber,
		VoucherType:   domain.VoucherType(req.VoucherType),
		Description:   req.Description,
		CurrencyCode:  req.CurrencyCode,
		VoucherDate:   req.VoucherDate,
		Reference:     req.Reference,
		Notes:         req.Notes,
		Status:        domain.VoucherDraft,
		TicketID:      req.TicketID,
		CompanyID:     companyID,
		Version:       1,
		Entries:       entries,
		AuditFields:   domain.NewAuditFields(now, creatorUserID),
	}

	if err := s.voucherRepo.SaveVoucher(ctx, voucher, entries); err != nil {
		logger.Error("Failed to save voucher", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save voucher: %w", err)
	}

	logger.Info("Voucher created", slog.String("voucher_id", voucherID), slog.String("voucher_number", voucherNumber))
	return &voucher, nil
}

// GetVoucherByID implements portssvc.VoucherSvcFacade.
func (s *voucherService) GetVoucherByID(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to find voucher %s: %w", voucherID, err)
	}
	if voucher.CompanyID != companyID {
		// Obscure existence across companies.
		return nil, apperrors.ErrNotFound
	}
	return voucher, nil
}

// ListVouchers implements portssvc.VoucherSvcFacade.
func (s *voucherService) ListVouchers(ctx context.Context, companyID string, params dto.ListVouchersParams) ([]domain.Voucher, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	var status *domain.VoucherStatus
	if params.Status != nil {
		st := domain.VoucherStatus(*params.Status)
		status = &st
	}
	vouchers, err := s.voucherRepo.ListVouchers(ctx, companyID, status, limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	return vouchers, nil
}

// transition loads the voucher, applies the in-memory guard and persists the
// new status with a version-checked update. On a stale version it reloads and
// re-applies, so the guard is always evaluated against the persisted state.
func (s *voucherService) transition(ctx context.Context, companyID, voucherID, userID string, apply func(v *domain.Voucher, now time.Time) error) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	for attempt := 1; attempt <= maxSequenceRetries; attempt++ {
		voucher, err := s.GetVoucherByID(ctx, companyID, voucherID)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		if err := apply(voucher, now); err != nil {
			return nil, err
		}
		voucher.Touch(now, userID)

		err = s.voucherRepo.UpdateVoucherStatus(ctx, *voucher)
		if err == nil {
			return voucher, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("failed to update voucher %s: %w", voucherID, err)
		}

		logger.Warn("Voucher version conflict, retrying", slog.String("voucher_id", voucherID), slog.Int("attempt", attempt))
		if err := sleepBackoff(ctx, attempt); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: concurrent updates on voucher %s", apperrors.ErrConcurrencyConflict, voucherID)
}

// SubmitVoucher implements portssvc.VoucherSvcFacade.
func (s *voucherService) SubmitVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error) {
	return s.transition(ctx, companyID, voucherID, userID, func(v *domain.Voucher, now time.Time) error {
		return v.Submit(now, userID)
	})
}

// ApproveVoucher implements portssvc.VoucherSvcFacade.
func (s *voucherService) ApproveVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error) {
	return s.transition(ctx, companyID, voucherID, userID, func(v *domain.Voucher, now time.Time) error {
		return v.Approve(now, userID)
	})
}

// RejectVoucher implements portssvc.VoucherSvcFacade.
func (s *voucherService) RejectVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error) {
	return s.transition(ctx, companyID, voucherID, userID, func(v *domain.Voucher, now time.Time) error {
		return v.Reject(now, userID)
	})
}

// CancelVoucher implements portssvc.VoucherSvcFacade.
func (s *voucherService) CancelVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error) {
	return s.transition(ctx, companyID, voucherID, userID, func(v *domain.Voucher, now time.Time) error {
		return v.Cancel(now, userID)
	})
}

// UnpostVoucher implements portssvc.VoucherSvcFacade.
// The ledger rows written at posting time stay behind as the audit trail.
func (s *voucherService) UnpostVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error) {
	return s.transition(ctx, companyID, voucherID, userID, func(v *domain.Voucher, now time.Time) error {
		return v.Unpost(now, userID)
	})
}

// PostVoucher implements portssvc.VoucherSvcFacade. Posting writes the
// voucher's ledger rows and account balance changes together with the status
// update in one DB transaction.
func (s *voucherService) PostVoucher(ctx context.Context, companyID, voucherID, userID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	for attempt := 1; attempt <= maxSequenceRetries; attempt++ {
		voucher, err := s.GetVoucherByID(ctx, companyID, voucherID)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		if err := voucher.Post(now, userID); err != nil {
			return nil, err
		}

		accountsMap, err := s.accountSvc.GetAccountsByIDs(ctx, companyID, voucherAccountIDs(voucher.Entries))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch accounts for posting: %w", err)
		}

		ledgerRows, balanceChanges, err := s.buildPostingRows(voucher, accountsMap, now, userID)
		if err != nil {
			return nil, err
		}

		err = s.voucherRepo.PostVoucher(ctx, *voucher, ledgerRows, balanceChanges)
		if err == nil {
			logger.Info("Voucher posted", slog.String("voucher_id", voucherID), slog.String("voucher_number", voucher.VoucherNumber))
			return voucher, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("failed to post voucher %s: %w", voucherID, err)
		}

		logger.Warn("Voucher post conflict, retrying", slog.String("voucher_id", voucherID), slog.Int("attempt", attempt))
		if err := sleepBackoff(ctx, attempt); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: concurrent updates on voucher %s", apperrors.ErrConcurrencyConflict, voucherID)
}

// buildPostingRows derives one ledger row per voucher entry plus the net
// balance change per account.
func (s *voucherService) buildPostingRows(voucher *domain.Voucher, accountsMap map[string]domain.Account, now time.Time, userID string) ([]domain.LedgerEntry, map[string]decimal.Decimal, error) {
	ledgerRows := make([]domain.LedgerEntry, 0, len(voucher.Entries))
	balanceChanges := make(map[string]decimal.Decimal)

	for _, entry := range voucher.Entries {
		acc, found := accountsMap[entry.AccountID]
		if !found {
			return nil, nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, entry.AccountID)
		}

		signedAmount, err := s.getSignedAmount(entry, acc.AccountType)
		if err != nil {
			return nil, nil, fmt.Errorf("internal error calculating balance changes: %w", err)
		}
		balanceChanges[entry.AccountID] = balanceChanges[entry.AccountID].Add(signedAmount)

		row := domain.LedgerEntry{
			LedgerEntryID:  uuid.NewString(),
			EntryDate:      voucher.VoucherDate,
			DocumentNumber: voucher.VoucherNumber,
			DocumentType:   domain.DocumentTypeVoucher,
			DocumentID:     voucher.VoucherID,
			Description:    entry.Description,
			AccountCode:    acc.AccountCode,
			AccountName:    acc.AccountName,
			CurrencyCode:   entry.CurrencyCode,
			CompanyID:      voucher.CompanyID,
			CreatedAt:      now,
			CreatedBy:      userID,
		}
		if row.Description == "" {
			row.Description = voucher.Description
		}
		if entry.EntryType == domain.Debit {
			row.DebitAmount = entry.Amount
			row.LocalDebitAmount = entry.Amount
		} else {
			row.CreditAmount = entry.Amount
			row.LocalCreditAmount = entry.Amount
		}
		ledgerRows = append(ledgerRows, row)
	}

	return ledgerRows, balanceChanges, nil
}

func voucherAccountIDs(entries []domain.VoucherEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AccountID)
	}
	return uniqueStrings(ids)
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
