package services

import (
	"fmt"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
)

// defaultAccountResolver is the built-in chart-of-accounts policy for the
// simplified Cost/Income/Transfer paths. Companies with their own chart plug
// in a different portssvc.AccountResolver.
type defaultAccountResolver struct{}

// NewDefaultAccountResolver returns the built-in posting account policy.
func NewDefaultAccountResolver() portssvc.AccountResolver {
	return defaultAccountResolver{}
}

var _ portssvc.AccountResolver = defaultAccountResolver{}

// SourceAccount implements portssvc.AccountResolver.
func (defaultAccountResolver) SourceAccount(source domain.PaymentSource) (portssvc.AccountRef, error) {
	switch source {
	case domain.PaymentSourceCash:
		return portssvc.AccountRef{Code: "1100", Name: "Cash on Hand"}, nil
	case domain.PaymentSourceBank:
		return portssvc.AccountRef{Code: "1200", Name: "Bank Accounts"}, nil
	default:
		return portssvc.AccountRef{}, fmt.Errorf("%w: unknown payment source %q", apperrors.ErrValidation, source)
	}
}

// ExpenseAccount implements portssvc.AccountResolver.
func (defaultAccountResolver) ExpenseAccount() portssvc.AccountRef {
	return portssvc.AccountRef{Code: "6000", Name: "General Expenses"}
}

// RevenueAccount implements portssvc.AccountResolver.
func (defaultAccountResolver) RevenueAccount() portssvc.AccountRef {
	return portssvc.AccountRef{Code: "4000", Name: "Sales Revenue"}
}
