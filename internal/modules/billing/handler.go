package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bluemoon/internal/pkg/response"
	"bluemoon/internal/pkg/utils"
	"bluemoon/internal/pkg/validator"
	"bluemoon/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(authed, admin *gin.RouterGroup) {
	authed.GET("/fees", h.ListFees)
	authed.GET("/fees/overdue", h.OverdueFees)
	authed.GET("/fees/:id", h.GetFee)
	authed.GET("/fees/:id/payments", h.ListPayments)

	admin.POST("/fees", h.CreateFee)
	admin.PUT("/fees/:id", h.UpdateFee)
	admin.DELETE("/fees/:id", h.DeleteFee)
	admin.POST("/payments", h.RecordPayment)
}

func (h *Handler) ListFees(c *gin.Context) {
	roomID, ok := utils.OptionalID(c.Query("room_id"))
	if !ok {
		response.BadRequest(c, "invalid room_id")
		return
	}
	vehicleID, ok := utils.OptionalID(c.Query("vehicle_id"))
	if !ok {
		response.BadRequest(c, "invalid vehicle_id")
		return
	}

	page, err := h.service.ListFees(c.Request.Context(), repository.FeeFilter{
		Q:         c.Query("q"),
		FeeType:   c.Query("fee_type"),
		Status:    c.Query("status"),
		Period:    c.Query("period"),
		RoomID:    roomID,
		VehicleID: vehicleID,
		Page:      utils.Atoi(c.Query("page"), 1),
		PageSize:  utils.Atoi(c.Query("page_size"), repository.DefaultPageSize),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"items":     page.Items,
		"total":     page.Total,
		"page":      page.Page,
		"page_size": page.PageSize,
	})
}

func (h *Handler) GetFee(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid fee id")
		return
	}

	fee, err := h.service.GetFee(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"fee": fee})
}

func (h *Handler) CreateFee(c *gin.Context) {
	var req CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	fee, err := h.service.CreateFee(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"fee": fee})
}

func (h *Handler) UpdateFee(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid fee id")
		return
	}

	var req UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	fee, err := h.service.UpdateFee(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"fee": fee})
}

func (h *Handler) DeleteFee(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid fee id")
		return
	}

	res, err := h.service.DeleteFee(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"fee_id": res.FeeID, "deleted_payments": res.DeletedPayments})
}

func (h *Handler) OverdueFees(c *gin.Context) {
	fees, err := h.service.OverdueFees(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"items": fees})
}

func (h *Handler) ListPayments(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid fee id")
		return
	}

	payments, err := h.service.ListPayments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"payments": payments})
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	res, err := h.service.RecordPayment(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{
		"payment":     res.Payment,
		"fee_id":      res.FeeID,
		"amount_paid": res.NewAmountPaid,
		"status":      res.NewStatus,
	})
}
