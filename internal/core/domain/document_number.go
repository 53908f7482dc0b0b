package domain

import (
	"fmt"
	"time"
)

// DocumentType identifies a kind of financial document that needs sequential numbering.
type DocumentType string

const (
	DocumentTypeCost     DocumentType = "COST"
	DocumentTypeIncome   DocumentType = "INCOME"
	DocumentTypeVoucher  DocumentType = "VOUCHER"
	DocumentTypeTransfer DocumentType = "TRANSFER"
	DocumentTypeTicket   DocumentType = "TICKET"
)

// ResetPeriod controls when a document number sequence restarts from zero.
type ResetPeriod string

const (
	ResetNever   ResetPeriod = "NEVER"
	ResetDaily   ResetPeriod = "DAILY"
	ResetMonthly ResetPeriod = "MONTHLY"
	ResetYearly  ResetPeriod = "YEARLY"
)

// defaultPrefixes maps each known document type to its number prefix.
// Unknown types fall back to the generic "DOC" prefix.
var defaultPrefixes = map[DocumentType]string{
	DocumentTypeCost:     "CST",
	DocumentTypeIncome:   "INC",
	DocumentTypeVoucher:  "VCH",
	DocumentTypeTransfer: "TRF",
	DocumentTypeTicket:   "TKT",
}

const defaultPadLength = 6

// DefaultPrefix returns the configured prefix for a document type.
func DefaultPrefix(docType DocumentType) string {
	if p, ok := defaultPrefixes[docType]; ok {
		return p
	}
	return "DOC"
}

// DocumentNumber is the persisted sequence row for one (documentType, company)
// pair. CurrentNumber increases monotonically within a reset epoch; Version is
// the optimistic-concurrency token checked on every update.
type DocumentNumber struct {
	DocumentNumberID string       `json:"documentNumberID"`
	DocumentType     DocumentType `json:"documentType"`
	CompanyID        string       `json:"companyID"`
	Prefix           string       `json:"prefix"`
	CurrentNumber    int64        `json:"currentNumber"`
	PadLength        int          `json:"padLength"`
	Suffix           string       `json:"suffix"`
	ResetDate        time.Time    `json:"resetDate"`
	ResetPeriod      ResetPeriod  `json:"resetPeriod"`
	Version          int64        `json:"version"`
	AuditFields
}

// NewDocumentNumber builds a fresh sequence row with the default prefix for the type.
func NewDocumentNumber(id string, docType DocumentType, companyID string, now time.Time, userID string) DocumentNumber {
	return DocumentNumber{
		DocumentNumberID: id,
		DocumentType:     docType,
		CompanyID:        companyID,
		Prefix:           DefaultPrefix(docType),
		CurrentNumber:    0,
		PadLength:        defaultPadLength,
		ResetDate:        now,
		ResetPeriod:      ResetNever,
		Version:          1,
		AuditFields:      NewAuditFields(now, userID),
	}
}

// NeedsReset reports whether the reset period boundary was crossed between
// ResetDate and now.
func (d DocumentNumber) NeedsReset(now time.Time) bool {
	switch d.ResetPeriod {
	case ResetDaily:
		return d.ResetDate.YearDay() != now.YearDay() || d.ResetDate.Year() != now.Year()
	case ResetMonthly:
		return d.ResetDate.Month() != now.Month() || d.ResetDate.Year() != now.Year()
	case ResetYearly:
		return d.ResetDate.Year() != now.Year()
	default:
		return false
	}
}

// Advance applies the reset-then-increment step and returns the formatted number.
func (d *DocumentNumber) Advance(now time.Time) string {
	if d.NeedsReset(now) {
		d.CurrentNumber = 0
		d.ResetDate = now
	}
	d.CurrentNumber++
	return d.Format()
}

// Format renders the current number as {prefix}{zero-padded number}{suffix}.
func (d DocumentNumber) Format() string {
	return fmt.Sprintf("%s%0*d%s", d.Prefix, d.PadLength, d.CurrentNumber, d.Suffix)
}
