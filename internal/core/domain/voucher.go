package domain

import (
	"fmt"
	"time"

	"github.com/agencyops/travel_ledger_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// VoucherType classifies the financial event a voucher records.
type VoucherType string

const (
	VoucherIncome   VoucherType = "INCOME"
	VoucherExpense  VoucherType = "EXPENSE"
	VoucherTransfer VoucherType = "TRANSFER"
)

// VoucherStatus is the approval state of a voucher.
type VoucherStatus string

const (
	VoucherDraft     VoucherStatus = "DRAFT"
	VoucherPending   VoucherStatus = "PENDING"
	VoucherApproved  VoucherStatus = "APPROVED"
	VoucherRejected  VoucherStatus = "REJECTED"
	VoucherPosted    VoucherStatus = "POSTED"
	VoucherCancelled VoucherStatus = "CANCELLED"
)

// EntryType indicates whether a voucher entry is a Debit or a Credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// balanceTolerance absorbs 2dp rounding differences between the two sides.
var balanceTolerance = decimal.NewFromFloat(0.01)

// VoucherEntry is a single debit or credit line within a voucher.
type VoucherEntry struct {
	VoucherEntryID string          `json:"voucherEntryID"`
	VoucherID      string          `json:"voucherID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"` // always positive
	EntryType      EntryType       `json:"entryType"`
	Description    string          `json:"description"`
	CurrencyCode   string          `json:"currencyCode"`
	AuditFields
}

// Voucher is the double-entry aggregate: a header plus its debit/credit
// entries. Transition guards live here so no partially-invalid voucher can
// exist in memory; posting makes it part of the permanent financial record.
type Voucher struct {
	VoucherID     string         `json:"voucherID"`
	VoucherNumber string         `json:"voucherNumber"` // unique, issued by the sequencer
	VoucherType   VoucherType    `json:"voucherType"`
	Description   string         `json:"description"`
	CurrencyCode  string         `json:"currencyCode"`
	VoucherDate   time.Time      `json:"voucherDate"`
	Reference     string         `json:"reference"`
	Notes         string         `json:"notes"`
	Status        VoucherStatus  `json:"status"`
	IsPosted      bool           `json:"isPosted"`
	PostedAt      *time.Time     `json:"postedAt,omitempty"`
	PostedBy      *string        `json:"postedBy,omitempty"`
	TicketID      *string        `json:"ticketID,omitempty"`
	CompanyID     string         `json:"companyID"`
	Version       int64          `json:"version"`
	Entries       []VoucherEntry `json:"entries,omitempty"`
	AuditFields
}

func transitionErr(status VoucherStatus, action string) error {
	return fmt.Errorf("%w: cannot %s a voucher in status %s", apperrors.ErrInvalidTransition, action, status)
}

// DebitTotal sums the debit entries.
func (v Voucher) DebitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range v.Entries {
		if e.EntryType == Debit {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// CreditTotal sums the credit entries.
func (v Voucher) CreditTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range v.Entries {
		if e.EntryType == Credit {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// IsBalanced reports whether debits equal credits within the rounding tolerance.
func (v Voucher) IsBalanced() bool {
	return v.DebitTotal().Sub(v.CreditTotal()).Abs().LessThanOrEqual(balanceTolerance)
}

// Submit moves a balanced draft into the pending approval queue.
func (v *Voucher) Submit(now time.Time, userID string) error {
	if v.Status != VoucherDraft {
		return transitionErr(v.Status, "submit")
	}
	if !v.IsBalanced() {
		return fmt.Errorf("%w: debits %s do not equal credits %s", apperrors.ErrValidation,
			v.DebitTotal(), v.CreditTotal())
	}
	v.Status = VoucherPending
	v.Touch(now, userID)
	return nil
}

// Approve accepts a pending voucher.
func (v *Voucher) Approve(now time.Time, userID string) error {
	if v.Status != VoucherPending {
		return transitionErr(v.Status, "approve")
	}
	v.Status = VoucherApproved
	v.Touch(now, userID)
	return nil
}

// Reject is a terminal refusal of a pending voucher.
func (v *Voucher) Reject(now time.Time, userID string) error {
	if v.Status != VoucherPending {
		return transitionErr(v.Status, "reject")
	}
	v.Status = VoucherRejected
	v.Touch(now, userID)
	return nil
}

// Post writes an approved, balanced voucher into the permanent record.
func (v *Voucher) Post(now time.Time, userID string) error {
	if v.IsPosted {
		return fmt.Errorf("%w: voucher %s is already posted", apperrors.ErrInvalidTransition, v.VoucherNumber)
	}
	if v.Status != VoucherApproved {
		return transitionErr(v.Status, "post")
	}
	if !v.IsBalanced() {
		return fmt.Errorf("%w: debits %s do not equal credits %s", apperrors.ErrValidation,
			v.DebitTotal(), v.CreditTotal())
	}
	v.Status = VoucherPosted
	v.IsPosted = true
	v.PostedAt = &now
	v.PostedBy = &userID
	v.Touch(now, userID)
	return nil
}

// Unpost reverts a posted voucher to Approved, clearing the posting metadata.
// Ledger history written at posting time is not touched.
func (v *Voucher) Unpost(now time.Time, userID string) error {
	if !v.IsPosted {
		return transitionErr(v.Status, "unpost")
	}
	v.Status = VoucherApproved
	v.IsPosted = false
	v.PostedAt = nil
	v.PostedBy = nil
	v.Touch(now, userID)
	return nil
}

// Cancel terminates a voucher that has not yet been posted.
func (v *Voucher) Cancel(now time.Time, userID string) error {
	if v.IsPosted {
		return fmt.Errorf("%w: posted vouchers cannot be cancelled", apperrors.ErrInvalidTransition)
	}
	if v.Status != VoucherDraft && v.Status != VoucherPending {
		return transitionErr(v.Status, "cancel")
	}
	v.Status = VoucherCancelled
	v.Touch(now, userID)
	return nil
}
