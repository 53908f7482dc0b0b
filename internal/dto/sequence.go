package dto

import (
	"time"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
)

// ConfigureSequenceRequest updates the formatting and reset settings of a
// document number sequence. Nil fields are left unchanged.
type ConfigureSequenceRequest struct {
	Prefix      *string `json:"prefix"`
	Suffix      *string `json:"suffix"`
	PadLength   *int    `json:"padLength"`
	ResetPeriod *string `json:"resetPeriod" binding:"omitempty,oneof=NEVER DAILY MONTHLY YEARLY"`
}

// DocumentNumberResponse defines the data returned for a sequence row.
type DocumentNumberResponse struct {
	DocumentType  string    `json:"documentType"`
	Prefix        string    `json:"prefix"`
	CurrentNumber int64     `json:"currentNumber"`
	PadLength     int       `json:"padLength"`
	Suffix        string    `json:"suffix"`
	ResetDate     time.Time `json:"resetDate"`
	ResetPeriod   string    `json:"resetPeriod"`
	NextFormatted string    `json:"nextFormatted"`
}

// NextNumberResponse returns a freshly issued document number.
type NextNumberResponse struct {
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
}

// ToDocumentNumberResponse converts a domain.DocumentNumber to its response DTO.
func ToDocumentNumberResponse(dn *domain.DocumentNumber) DocumentNumberResponse {
	preview := *dn
	next := preview.Advance(dn.ResetDate)
	return DocumentNumberResponse{
		DocumentType:  string(dn.DocumentType),
		Prefix:        dn.Prefix,
		CurrentNumber: dn.CurrentNumber,
		PadLength:     dn.PadLength,
		Suffix:        dn.Suffix,
		ResetDate:     dn.ResetDate,
		ResetPeriod:   string(dn.ResetPeriod),
		NextFormatted: next,
	}
}
