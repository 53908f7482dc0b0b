package dto

import (
	"time"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateVoucherEntryRequest is one debit or credit line in a new voucher.
type CreateVoucherEntryRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	EntryType   string          `json:"entryType" binding:"required,oneof=DEBIT CREDIT"`
	Description string          `json:"description"`
}

// CreateVoucherRequest defines the payload for creating a voucher.
type CreateVoucherRequest struct {
	VoucherType  string                      `json:"voucherType" binding:"required,oneof=INCOME EXPENSE TRANSFER"`
	Description  string                      `json:"description" binding:"required"`
	CurrencyCode string                      `json:"currencyCode" binding:"required,len=3"`
	VoucherDate  time.Time                   `json:"voucherDate" binding:"required"`
	Reference    string                      `json:"reference"`
	Notes        string                      `json:"notes"`
	TicketID     *string                     `json:"ticketID"`
	Entries      []CreateVoucherEntryRequest `json:"entries" binding:"required,min=2,dive"`
}

// ListVouchersParams holds filtering and paging options for voucher listings.
type ListVouchersParams struct {
	Status *string `form:"status"`
	Limit  int     `form:"limit"`
	Offset int     `form:"offset"`
}

// VoucherEntryResponse defines the data returned for a voucher entry.
type VoucherEntryResponse struct {
	VoucherEntryID string          `json:"voucherEntryID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	EntryType      string          `json:"entryType"`
	Description    string          `json:"description"`
	CurrencyCode   string          `json:"currencyCode"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	VoucherID     string                 `json:"voucherID"`
	VoucherNumber string                 `json:"voucherNumber"`
	VoucherType   string                 `json:"voucherType"`
	Description   string                 `json:"description"`
	CurrencyCode  string                 `json:"currencyCode"`
	VoucherDate   time.Time              `json:"voucherDate"`
	Reference     string                 `json:"reference"`
	Notes         string                 `json:"notes"`
	Status        string                 `json:"status"`
	IsPosted      bool                   `json:"isPosted"`
	PostedAt      *time.Time             `json:"postedAt,omitempty"`
	PostedBy      *string                `json:"postedBy,omitempty"`
	TicketID      *string                `json:"ticketID,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	CreatedBy     string                 `json:"createdBy"`
	Entries       []VoucherEntryResponse `json:"entries,omitempty"`
}

// ToVoucherResponse converts a domain.Voucher to its response DTO.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	entries := make([]VoucherEntryResponse, len(v.Entries))
	for i, e := range v.Entries {
		entries[i] = VoucherEntryResponse{
			VoucherEntryID: e.VoucherEntryID,
			AccountID:      e.AccountID,
			Amount:         e.Amount,
			EntryType:      string(e.EntryType),
			Description:    e.Description,
			CurrencyCode:   e.CurrencyCode,
		}
	}
	return VoucherResponse{
		VoucherID:     v.VoucherID,
		VoucherNumber: v.VoucherNumber,
		VoucherType:   string(v.VoucherType),
		Description:   v.Description,
		CurrencyCode:  v.CurrencyCode,
		VoucherDate:   v.VoucherDate,
		Reference:     v.Reference,
		Notes:         v.Notes,
		Status:        string(v.Status),
		IsPosted:      v.IsPosted,
		PostedAt:      v.PostedAt,
		PostedBy:      v.PostedBy,
		TicketID:      v.TicketID,
		CreatedAt:     v.CreatedAt,
		CreatedBy:     v.CreatedBy,
		Entries:       entries,
	}
}

// ToVoucherResponses converts a slice of vouchers.
func ToVoucherResponses(vouchers []domain.Voucher) []VoucherResponse {
	responses := make([]VoucherResponse, len(vouchers))
	for i := range vouchers {
		responses[i] = ToVoucherResponse(&vouchers[i])
	}
	return responses
}
