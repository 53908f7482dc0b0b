package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/internal/dto"
	"github.com/agencyops/travel_ledger_app/internal/middleware"
)

// fxHandler handles HTTP requests related to foreign-currency lots.
type fxHandler struct {
	fxService portssvc.FxSvcFacade
}

// newFxHandler creates a new fxHandler.
func newFxHandler(fxService portssvc.FxSvcFacade) *fxHandler {
	return &fxHandler{
		fxService: fxService,
	}
}

// addLot godoc
// @Summary Record a foreign-currency purchase lot
// @Description Adds an acquisition of foreign currency to the FIFO holdings
// @Tags fx
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   lot body dto.AddFxLotRequest true "Purchase lot"
// @Success 201 {object} dto.FxLotResponse
// @Failure 400 {object} map[string]string "Invalid request format or non-positive amount"
// @Router /companies/{companyID}/fx/lots [post]
func (h *fxHandler) addLot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AddFxLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for AddLot", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	companyID, userID, ok := actor(c, logger)
	if !ok {
		return
	}

	lot, err := h.fxService.AddLot(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record purchase lot")
		return
	}

	logger.Info("FX lot recorded", slog.String("fx_lot_id", lot.FxLotID), slog.String("currency", lot.CurrencyCode))
	c.JSON(http.StatusCreated, dto.ToFxLotResponse(lot))
}

// consume godoc
// @Summary Consume foreign currency oldest-first
// @Description Draws the requested amount from open lots in FIFO order and returns the realized cost basis
// @Tags fx
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   consumption body dto.ConsumeFxRequest true "Amount to consume"
// @Success 200 {object} dto.ConsumeFxResponse
// @Failure 422 {object} map[string]string "Insufficient balance across open lots"
// @Router /companies/{companyID}/fx/consume [post]
func (h *fxHandler) consume(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ConsumeFxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for Consume", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	companyID, userID, ok := actor(c, logger)
	if !ok {
		return
	}

	result, err := h.fxService.Consume(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to consume currency")
		return
	}

	logger.Info("FX consumed",
		slog.String("currency", result.CurrencyCode),
		slog.String("amount", result.ConsumedAmount.String()),
		slog.String("weighted_average_rate", result.WeightedAverageRate.String()),
	)
	c.JSON(http.StatusOK, dto.ToConsumeFxResponse(result))
}

// listLots godoc
// @Summary List purchase lots
// @Tags fx
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   currencyCode query string false "Currency filter"
// @Success 200 {array} dto.FxLotResponse
// @Router /companies/{companyID}/fx/lots [get]
func (h *fxHandler) listLots(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := actor(c, logger)
	if !ok {
		return
	}

	var currency *string
	if v := c.Query("currencyCode"); v != "" {
		currency = &v
	}

	lots, err := h.fxService.ListLots(c.Request.Context(), companyID, currency)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list purchase lots")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lots": dto.ToFxLotResponses(lots)})
}

// listConsumptions godoc
// @Summary List consumption records
// @Tags fx
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   fxLotID query string false "Lot filter"
// @Success 200 {array} dto.FxConsumptionResponse
// @Router /companies/{companyID}/fx/consumptions [get]
func (h *fxHandler) listConsumptions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := actor(c, logger)
	if !ok {
		return
	}

	var lotID *string
	if v := c.Query("fxLotID"); v != "" {
		lotID = &v
	}

	consumptions, err := h.fxService.ListConsumptions(c.Request.Context(), companyID, lotID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list consumptions")
		return
	}

	responses := make([]dto.FxConsumptionResponse, len(consumptions))
	for i := range consumptions {
		responses[i] = dto.ToFxConsumptionResponse(&consumptions[i])
	}
	c.JSON(http.StatusOK, gin.H{"consumptions": responses})
}

// registerFxRoutes registers FX specific routes.
func registerFxRoutes(group *gin.RouterGroup, fxService portssvc.FxSvcFacade) {
	h := newFxHandler(fxService)

	fx := group.Group("/fx")
	{
		fx.POST("/lots", h.addLot)
		fx.GET("/lots", h.listLots)
		fx.POST("/consume", h.consume)
		fx.GET("/consumptions", h.listConsumptions)
	}
}
