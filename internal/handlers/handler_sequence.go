package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/internal/dto"
	"github.com/agencyops/travel_ledger_app/internal/middleware"
)

// sequenceHandler handles HTTP requests for document number sequences.
type sequenceHandler struct {
	sequencerService portssvc.SequencerSvcFacade
}

// newSequenceHandler creates a new sequenceHandler.
func newSequenceHandler(sequencerService portssvc.SequencerSvcFacade) *sequenceHandler {
	return &sequenceHandler{
		sequencerService: sequencerService,
	}
}

var knownDocumentTypes = map[domain.DocumentType]bool{
	domain.DocumentTypeCost:     true,
	domain.DocumentTypeIncome:   true,
	domain.DocumentTypeVoucher:  true,
	domain.DocumentTypeTransfer: true,
	domain.DocumentTypeTicket:   true,
}

func documentTypeParam(c *gin.Context) (domain.DocumentType, bool) {
	docType := domain.DocumentType(c.Param("documentType"))
	return docType, knownDocumentTypes[docType]
}

// nextNumber godoc
// @Summary Issue the next document number
// @Description Advances the sequence for (documentType, company) and returns the formatted number
// @Tags sequences
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   documentType path string true "Document type (COST, INCOME, VOUCHER, TRANSFER, TICKET)"
// @Success 200 {object} dto.NextNumberResponse
// @Failure 409 {object} map[string]string "Sequence contention exhausted retries"
// @Router /companies/{companyID}/sequences/{documentType}/next [post]
func (h *sequenceHandler) nextNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, userID, ok := actor(c, logger)
	if !ok {
		return
	}

	docType, ok := documentTypeParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown document type"})
		return
	}

	number, err := h.sequencerService.NextNumber(c.Request.Context(), docType, companyID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to issue document number")
		return
	}

	logger.Info("Document number issued", slog.String("document_type", string(docType)), slog.String("document_number", number))
	c.JSON(http.StatusOK, dto.NextNumberResponse{
		DocumentType:   string(docType),
		DocumentNumber: number,
	})
}

// getSequence godoc
// @Summary Get the current sequence state
// @Description Returns the sequence settings and a preview of the next number without advancing
// @Tags sequences
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   documentType path string true "Document type"
// @Success 200 {object} dto.DocumentNumberResponse
// @Failure 404 {object} map[string]string "Sequence not yet created"
// @Router /companies/{companyID}/sequences/{documentType} [get]
func (h *sequenceHandler) getSequence(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := actor(c, logger)
	if !ok {
		return
	}

	docType, ok := documentTypeParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown document type"})
		return
	}

	dn, err := h.sequencerService.GetSequence(c.Request.Context(), docType, companyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve sequence")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentNumberResponse(dn))
}

// configureSequence godoc
// @Summary Configure a sequence
// @Description Updates prefix, suffix, padding or reset period; nil fields stay unchanged
// @Tags sequences
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   documentType path string true "Document type"
// @Param   settings body dto.ConfigureSequenceRequest true "Settings to change"
// @Success 200 {object} dto.DocumentNumberResponse
// @Router /companies/{companyID}/sequences/{documentType} [put]
func (h *sequenceHandler) configureSequence(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ConfigureSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ConfigureSequence", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	companyID, userID, ok := actor(c, logger)
	if !ok {
		return
	}

	docType, ok := documentTypeParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown document type"})
		return
	}

	dn, err := h.sequencerService.ConfigureSequence(c.Request.Context(), docType, companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to configure sequence")
		return
	}

	logger.Info("Sequence configured", slog.String("document_type", string(docType)))
	c.JSON(http.StatusOK, dto.ToDocumentNumberResponse(dn))
}

// registerSequenceRoutes registers sequence specific routes.
func registerSequenceRoutes(group *gin.RouterGroup, sequencerService portssvc.SequencerSvcFacade) {
	h := newSequenceHandler(sequencerService)

	sequences := group.Group("/sequences")
	{
		sequences.POST("/:documentType/next", h.nextNumber)
		sequences.GET("/:documentType", h.getSequence)
		sequences.PUT("/:documentType", h.configureSequence)
	}
}
