package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/internal/dto"
	"github.com/agencyops/travel_ledger_app/internal/middleware"
)

// ledgerHandler handles HTTP requests for financial documents and ledger rows.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ledgerService,
	}
}

// recordCost godoc
// @Summary Record a cost document
// @Description Books an outgoing payment; foreign-currency costs are settled from the FX holdings at the realized FIFO rate
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   cost body dto.RecordCostRequest true "Cost document"
// @Success 201 {object} dto.FinancialDocumentResponse
// @Failure 422 {object} map[string]string "Insufficient FX balance"
// @Router /companies/{companyID}/documents/costs [post]
func (h *ledgerHandler) recordCost(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RecordCost", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	companyID, userID, ok := actor(c, logger)
	if !ok {
		return
	}

	doc, err := h.ledgerService.RecordCost(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record cost")
		return
	}

	logger.Info("Cost recorded", slog.String("document_number", doc.DocumentNumber))
	c.JSON(http.StatusCreated, dto.ToFinancialDocumentResponse(doc))
}

// recordIncome godoc
// @Summary Record an income document
// @Description Books an incoming payment; foreign-currency income opens a new FX lot at the stated rate
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   income body dto.RecordIncomeRequest true "Income document"
// @Success 201 {object} dto.FinancialDocumentResponse
// @Router /companies/{companyID}/documents/incomes [post]
func (h *ledgerHandler) recordIncome(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RecordIncome", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	companyID, userID, ok := actor(c, logger)
	if !ok {
		return
	}

	doc, err := h.ledgerService.RecordIncome(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record income")
		return
	}

	logger.Info("Income recorded", slog.String("document_number", doc.DocumentNumber))
	c.JSON(http.StatusCreated, dto.ToFinancialDocumentResponse(doc))
}

// recordTransfer godoc
// @Summary Record a transfer document
// @Description Books a movement between the cash and bank payment sources
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   transfer body dto.RecordTransferRequest true "Transfer document"
// @Success 201 {object} dto.FinancialDocumentResponse
// @Router /companies/{companyID}/documents/transfers [post]
func (h *ledgerHandler) recordTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RecordTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	companyID, userID, ok := actor(c, logger)
	if !ok {
		return
	}

	doc, err := h.ledgerService.RecordTransfer(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record transfer")
		return
	}

	logger.Info("Transfer recorded", slog.String("document_number", doc.DocumentNumber))
	c.JSON(http.StatusCreated, dto.ToFinancialDocumentResponse(doc))
}

// getDocument godoc
// @Summary Get a financial document
// @Tags ledger
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   documentID path string true "Document ID"
// @Success 200 {object} dto.FinancialDocumentResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Router /companies/{companyID}/documents/{documentID} [get]
func (h *ledgerHandler) getDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := actor(c, logger)
	if !ok {
		return
	}

	doc, err := h.ledgerService.GetDocumentByID(c.Request.Context(), companyID, c.Param("documentID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve document")
		return
	}
	c.JSON(http.StatusOK, dto.ToFinancialDocumentResponse(doc))
}

// listDocuments godoc
// @Summary List financial documents
// @Tags ledger
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   documentType query string false "Document type filter"
// @Param   limit query int false "Page size"
// @Param   offset query int false "Page offset"
// @Success 200 {array} dto.FinancialDocumentResponse
// @Router /companies/{companyID}/documents [get]
func (h *ledgerHandler) listDocuments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := actor(c, logger)
	if !ok {
		return
	}

	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Error("Failed to bind query for ListDocuments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	docs, err := h.ledgerService.ListDocuments(c.Request.Context(), companyID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list documents")
		return
	}

	responses := make([]dto.FinancialDocumentResponse, len(docs))
	for i := range docs {
		responses[i] = dto.ToFinancialDocumentResponse(&docs[i])
	}
	c.JSON(http.StatusOK, gin.H{"documents": responses})
}

// listEntriesByAccount godoc
// @Summary List ledger rows for an account
// @Tags ledger
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   accountCode path string true "Account code"
// @Param   limit query int false "Page size"
// @Param   offset query int false "Page offset"
// @Success 200 {array} dto.LedgerEntryResponse
// @Router /companies/{companyID}/ledger/accounts/{accountCode} [get]
func (h *ledgerHandler) listEntriesByAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := actor(c, logger)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.ledgerService.ListEntriesByAccount(c.Request.Context(), companyID, c.Param("accountCode"), limit, offset)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list ledger entries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": dto.ToLedgerEntryResponses(entries)})
}

// listEntriesByDocument godoc
// @Summary List the ledger rows written for one document
// @Tags ledger
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   documentID path string true "Document ID"
// @Success 200 {array} dto.LedgerEntryResponse
// @Router /companies/{companyID}/ledger/documents/{documentID} [get]
func (h *ledgerHandler) listEntriesByDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := actor(c, logger)
	if !ok {
		return
	}

	entries, err := h.ledgerService.ListEntriesByDocument(c.Request.Context(), companyID, c.Param("documentID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list ledger entries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": dto.ToLedgerEntryResponses(entries)})
}

// registerLedgerRoutes registers document and ledger projection routes.
func registerLedgerRoutes(group *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	documents := group.Group("/documents")
	{
		documents.POST("/costs", h.recordCost)
		documents.POST("/incomes", h.recordIncome)
		documents.POST("/transfers", h.recordTransfer)
		documents.GET("", h.listDocuments)
		documents.GET("/:documentID", h.getDocument)
	}

	ledger := group.Group("/ledger")
	{
		ledger.GET("/accounts/:accountCode", h.listEntriesByAccount)
		ledger.GET("/documents/:documentID", h.listEntriesByDocument)
	}
}
