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

// maxParentDepth bounds the parent-chain walk so a corrupted hierarchy cannot
// loop forever.
const maxParentDepth = 100

// accountService manages the chart of accounts tree.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	clock       portssvc.Clock
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, clock portssvc.Clock) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, clock: clock}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount implements portssvc.AccountSvcFacade.
func (s *accountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	code := strings.TrimSpace(req.AccountCode)
	if code == "" {
		return nil, fmt.Errorf("%w: account code is required", apperrors.ErrValidation)
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, companyID, code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check account code %s: %w", code, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account code %s already exists in company %s", apperrors.ErrDuplicate, code, companyID)
	}

	if req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, req.ParentAccountID)
			}
			return nil, fmt.Errorf("failed to load parent account: %w", err)
		}
		if parent.CompanyID != companyID {
			return nil, fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, req.ParentAccountID)
		}
	}

	now := s.clock.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		AccountCode:     code,
		AccountName:     req.AccountName,
		AccountType:     domain.AccountType(req.AccountType),
		ParentAccountID: req.ParentAccountID,
		Balance:         decimal.Zero,
		CurrencyCode:    strings.ToUpper(req.CurrencyCode),
		IsActive:        true,
		CompanyID:       companyID,
		AuditFields:     domain.NewAuditFields(now, creatorUserID),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("account_code", code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_code", code))
	return &account, nil
}

// GetAccountByID implements portssvc.AccountSvcFacade.
func (s *accountService) GetAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.CompanyID != companyID {
		// Obscure existence across companies.
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// GetAccountsByIDs implements portssvc.AccountSvcFacade.
func (s *accountService) GetAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	scoped := make(map[string]domain.Account, len(accounts))
	for id, acc := range accounts {
		if acc.CompanyID == companyID {
			scoped[id] = acc
		}
	}
	return scoped, nil
}

// ListAccounts implements portssvc.AccountSvcFacade.
func (s *accountService) ListAccounts(ctx context.Context, companyID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount implements portssvc.AccountSvcFacade.
func (s *accountService) UpdateAccount(ctx context.Context, companyID, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.AccountName != nil {
		account.AccountName = *req.AccountName
		updated = true
	}
	if req.ParentAccountID != nil {
		if err := s.validateParentLink(ctx, companyID, accountID, *req.ParentAccountID); err != nil {
			return nil, err
		}
		account.ParentAccountID = *req.ParentAccountID
		updated = true
	}
	if req.IsActive != nil {
		if !*req.IsActive {
			hasChildren, err := s.accountRepo.HasChildren(ctx, accountID)
			if err != nil {
				return nil, fmt.Errorf("failed to check child accounts: %w", err)
			}
			if hasChildren {
				return nil, fmt.Errorf("%w: account %s has child accounts and cannot be deactivated", apperrors.ErrValidation, accountID)
			}
		}
		account.IsActive = *req.IsActive
		updated = true
	}

	if !updated {
		return account, nil
	}

	account.Touch(s.clock.Now(), userID)
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// DeactivateAccount implements portssvc.AccountSvcFacade.
func (s *accountService) DeactivateAccount(ctx context.Context, companyID, accountID, userID string) error {
	inactive := false
	_, err := s.UpdateAccount(ctx, companyID, accountID, dto.UpdateAccountRequest{IsActive: &inactive}, userID)
	return err
}

// validateParentLink rejects self-parenting and cycles. The walk follows
// parent ids up the tree; reaching the account being updated means the new
// link would close a loop.
func (s *accountService) validateParentLink(ctx context.Context, companyID, accountID, parentID string) error {
	if parentID == "" {
		return nil // detaching to root is always fine
	}
	if parentID == accountID {
		return fmt.Errorf("%w: an account cannot be its own parent", apperrors.ErrValidation)
	}

	current := parentID
	for depth := 0; depth < maxParentDepth; depth++ {
		parent, err := s.accountRepo.FindAccountByID(ctx, current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, current)
			}
			return fmt.Errorf("failed to walk account hierarchy: %w", err)
		}
		if parent.CompanyID != companyID {
			return fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, current)
		}
		if parent.AccountID == accountID {
			return fmt.Errorf("%w: setting parent %s would create a cycle", apperrors.ErrValidation, parentID)
		}
		if parent.ParentAccountID == "" {
			return nil
		}
		current = parent.ParentAccountID
	}
	return fmt.Errorf("%w: account hierarchy deeper than %d levels", apperrors.ErrValidation, maxParentDepth)
}
