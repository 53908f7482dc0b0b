package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agencyops/travel_ledger_app/internal/core/domain"
	"github.com/agencyops/travel_ledger_app/internal/dto"
	"github.com/agencyops/travel_ledger_app/internal/middleware"
)

// rateHandler exposes stateless currency conversion helpers. Rates are always
// caller-supplied; nothing here reads market data or touches storage.
type rateHandler struct{}

// convertAmount godoc
// @Summary Convert an amount between currencies
// @Description Applies a caller-supplied rate to an amount and returns the converted value plus the inverse rate
// @Tags rates
// @Accept  json
// @Produce  json
// @Param   conversion body dto.ConvertAmountRequest true "Amount and rate"
// @Success 200 {object} dto.ConvertAmountResponse
// @Failure 400 {object} map[string]string "Bad currency code or non-positive rate"
// @Router /rates/convert [post]
func (h *rateHandler) convertAmount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ConvertAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ConvertAmount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	effective := time.Now()
	if req.EffectiveDate != nil {
		effective = *req.EffectiveDate
	}

	rate, err := domain.NewExchangeRate(req.FromCurrency, req.ToCurrency, req.Rate, effective)
	if err != nil {
		respondServiceError(c, logger, err, "Invalid exchange rate")
		return
	}
	money, err := domain.NewMoney(req.Amount, req.FromCurrency)
	if err != nil {
		respondServiceError(c, logger, err, "Invalid amount")
		return
	}

	converted, err := rate.Convert(money)
	if err != nil {
		respondServiceError(c, logger, err, "Conversion failed")
		return
	}
	inverse, err := rate.Invert()
	if err != nil {
		respondServiceError(c, logger, err, "Conversion failed")
		return
	}

	c.JSON(http.StatusOK, dto.ConvertAmountResponse{
		Amount:          money.Amount,
		FromCurrency:    money.Currency,
		ConvertedAmount: converted.Amount,
		ToCurrency:      converted.Currency,
		Rate:            rate.Rate,
		InverseRate:     inverse.Rate,
		EffectiveDate:   rate.EffectiveDate,
	})
}

// registerRateRoutes registers the conversion utility routes.
func registerRateRoutes(group *gin.RouterGroup) {
	h := &rateHandler{}

	rates := group.Group("/rates")
	{
		rates.POST("/convert", h.convertAmount)
	}
}
