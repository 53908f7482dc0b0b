package services

import (
	"context"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/agencyops/travel_ledger_app/internal/dto"
)

// AccountSvcFacade manages the chart of accounts.
type AccountSvcFacade interface {
	// CreateAccount validates the parent link (no self-parent, no cycles) and
	// the code's uniqueness within the company before saving.
	CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	GetAccountByID(ctx context.Context, companyID, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves several accounts at once, keyed by id.
	GetAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error)

	ListAccounts(ctx context.Context, companyID string) ([]domain.Account, error)

	// UpdateAccount applies partial updates, re-checking the parent link.
	UpdateAccount(ctx context.Context, companyID, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount soft-disables an account; refused while children exist.
	DeactivateAccount(ctx context.Context, companyID, accountID, userID string) error
}
