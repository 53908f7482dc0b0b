package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
	"github.com/agencyops/travel_ledger_app/internal/dto"
	"github.com/agencyops/travel_ledger_app/internal/middleware"
)

// voucherHandler handles HTTP requests related to vouchers.
type voucherHandler struct {
	voucherService portssvc.VoucherSvcFacade
}

// newVoucherHandler creates a new voucherHandler.
func newVoucherHandler(voucherService portssvc.VoucherSvcFacade) *voucherHandler {
	return &voucherHandler{
		voucherService: voucherService,
	}
}

// actor extracts the company and user the request acts on behalf of.
// It writes the error response itself when either is missing.
func actor(c *gin.Context, logger *slog.Logger) (companyID, userID string, ok bool) {
	userID, ok = middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	companyID, ok = middleware.GetCompanyIDFromContext(c)
	if !ok {
		logger.Error("Company ID not found in context")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing company identifier"})
		return "", "", false
	}
	return companyID, userID, true
}

// createVoucher godoc
// @Summary Create a voucher
// @Description Creates a draft voucher with its debit/credit entries
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   voucher body dto.CreateVoucherRequest true "Voucher and entries"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Invalid request format or unbalanced data"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /companies/{companyID}/vouchers [post]
func (h *voucherHandler) createVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreateVoucher", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	companyID, userID, ok := actor(c, logger)
	if !ok {
		return
	}

	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create voucher")
		return
	}

	logger.Info("Voucher created", slog.String("voucher_id", voucher.VoucherID), slog.String("voucher_number", voucher.VoucherNumber))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(voucher))
}

// getVoucher godoc
// @Summary Get a voucher
// @Description Retrieves a voucher with its entries
// @Tags vouchers
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} map[string]string "Voucher not found"
// @Router /companies/{companyID}/vouchers/{voucherID} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := actor(c, logger)
	if !ok {
		return
	}

	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), companyID, c.Param("voucherID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// listVouchers godoc
// @Summary List vouchers
// @Description Lists the company's vouchers, newest first, optionally filtered by status
// @Tags vouchers
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   status query string false "Voucher status filter"
// @Param   limit query int false "Page size"
// @Param   offset query int false "Page offset"
// @Success 200 {array} dto.VoucherResponse
// @Router /companies/{companyID}/vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := actor(c, logger)
	if !ok {
		return
	}

	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Error("Failed to bind query for ListVouchers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	vouchers, err := h.voucherService.ListVouchers(c.Request.Context(), companyID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list vouchers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vouchers": dto.ToVoucherResponses(vouchers)})
}

// transition runs one state-machine action and renders the updated voucher.
func (h *voucherHandler) transition(c *gin.Context, action string,
	apply func(ctx *gin.Context, companyID, voucherID, userID string) error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, userID, ok := actor(c, logger)
	if !ok {
		return
	}
	voucherID := c.Param("voucherID")

	if err := apply(c, companyID, voucherID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to "+action+" voucher")
		return
	}

	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), companyID, voucherID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reload voucher")
		return
	}
	logger.Info("Voucher transition applied", slog.String("action", action), slog.String("voucher_id", voucherID), slog.String("status", string(voucher.Status)))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// submitVoucher godoc
// @Summary Submit a voucher for approval
// @Tags vouchers
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} map[string]string "Invalid transition"
// @Router /companies/{companyID}/vouchers/{voucherID}/submit [post]
func (h *voucherHandler) submitVoucher(c *gin.Context) {
	h.transition(c, "submit", func(ctx *gin.Context, companyID, voucherID, userID string) error {
		_, err := h.voucherService.SubmitVoucher(ctx.Request.Context(), companyID, voucherID, userID)
		return err
	})
}

// approveVoucher godoc
// @Summary Approve a pending voucher
// @Tags vouchers
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} map[string]string "Invalid transition"
// @Router /companies/{companyID}/vouchers/{voucherID}/approve [post]
func (h *voucherHandler) approveVoucher(c *gin.Context) {
	h.transition(c, "approve", func(ctx *gin.Context, companyID, voucherID, userID string) error {
		_, err := h.voucherService.ApproveVoucher(ctx.Request.Context(), companyID, voucherID, userID)
		return err
	})
}

// rejectVoucher godoc
// @Summary Reject a pending voucher
// @Tags vouchers
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} map[string]string "Invalid transition"
// @Router /companies/{companyID}/vouchers/{voucherID}/reject [post]
func (h *voucherHandler) rejectVoucher(c *gin.Context) {
	h.transition(c, "reject", func(ctx *gin.Context, companyID, voucherID, userID string) error {
		_, err := h.voucherService.RejectVoucher(ctx.Request.Context(), companyID, voucherID, userID)
		return err
	})
}

// postVoucher godoc
// @Summary Post an approved voucher to the ledger
// @Tags vouchers
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} map[string]string "Invalid transition or concurrent modification"
// @Router /companies/{companyID}/vouchers/{voucherID}/post [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	h.transition(c, "post", func(ctx *gin.Context, companyID, voucherID, userID string) error {
		_, err := h.voucherService.PostVoucher(ctx.Request.Context(), companyID, voucherID, userID)
		return err
	})
}

// unpostVoucher godoc
// @Summary Revert a posted voucher to approved
// @Tags vouchers
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} map[string]string "Invalid transition"
// @Router /companies/{companyID}/vouchers/{voucherID}/unpost [post]
func (h *voucherHandler) unpostVoucher(c *gin.Context) {
	h.transition(c, "unpost", func(ctx *gin.Context, companyID, voucherID, userID string) error {
		_, err := h.voucherService.UnpostVoucher(ctx.Request.Context(), companyID, voucherID, userID)
		return err
	})
}

// cancelVoucher godoc
// @Summary Cancel an unposted voucher
// @Tags vouchers
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} map[string]string "Invalid transition"
// @Router /companies/{companyID}/vouchers/{voucherID}/cancel [post]
func (h *voucherHandler) cancelVoucher(c *gin.Context) {
	h.transition(c, "cancel", func(ctx *gin.Context, companyID, voucherID, userID string) error {
		_, err := h.voucherService.CancelVoucher(ctx.Request.Context(), companyID, voucherID, userID)
		return err
	})
}

// registerVoucherRoutes registers voucher specific routes.
func registerVoucherRoutes(group *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade) {
	h := newVoucherHandler(voucherService)

	vouchers := group.Group("/vouchers")
	{
		vouchers.POST("", h.createVoucher)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:voucherID", h.getVoucher)
		vouchers.POST("/:voucherID/submit", h.submitVoucher)
		vouchers.POST("/:voucherID/approve", h.approveVoucher)
		vouchers.POST("/:voucherID/reject", h.rejectVoucher)
		vouchers.POST("/:voucherID/post", h.postVoucher)
		vouchers.POST("/:voucherID/unpost", h.unpostVoucher)
		vouchers.POST("/:voucherID/cancel", h.cancelVoucher)
	}
}
