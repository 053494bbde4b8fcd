package parking

import (
	"errors"
	"io"
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
	authed.GET("/vehicles", h.List)
	authed.GET("/vehicles/:id", h.Get)
	authed.GET("/parking/statistics", h.Statistics)
	authed.GET("/parking/vehicles-in-lot", h.InLot)

	admin.POST("/vehicles", h.Create)
	admin.PUT("/vehicles/:id", h.Update)
	admin.DELETE("/vehicles/:id", h.Delete)
	admin.POST("/vehicles/:id/checkin", h.Checkin)
	admin.POST("/vehicles/:id/checkout", h.Checkout)
}

func (h *Handler) List(c *gin.Context) {
	roomID, ok := utils.OptionalID(c.Query("room_id"))
	if !ok {
		response.BadRequest(c, "invalid room_id")
		return
	}

	vehicles, err := h.service.List(c.Request.Context(), repository.VehicleFilter{
		Q:             c.Query("q"),
		RoomID:        roomID,
		ParkingStatus: c.Query("parking_status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"vehicles": vehicles})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid vehicle id")
		return
	}

	v, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"vehicle": v})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	v, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"vehicle": v})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid vehicle id")
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	v, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"vehicle": v})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid vehicle id")
		return
	}

	res, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"vehicle_id":       res.VehicleID,
		"deleted_fees":     res.DeletedFees,
		"deleted_payments": res.DeletedPayments,
	})
}

func (h *Handler) Checkin(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid vehicle id")
		return
	}

	var req CheckinRequest
	if !bindOptional(c, &req) {
		return
	}

	v, err := h.service.Checkin(c.Request.Context(), id, req.ParkingSlot)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"vehicle": v})
}

func (h *Handler) Checkout(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid vehicle id")
		return
	}

	var req CheckoutRequest
	if !bindOptional(c, &req) {
		return
	}

	res, err := h.service.Checkout(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"vehicle_id":        res.VehicleID,
		"fee_id":            res.FeeID,
		"total":             res.Total,
		"parking_fee_total": res.ParkingFeeTotal,
		"fee":               res.Fee,
	})
}

func (h *Handler) InLot(c *gin.Context) {
	roomID, ok := utils.OptionalID(c.Query("room_id"))
	if !ok {
		response.BadRequest(c, "invalid room_id")
		return
	}

	vehicles, err := h.service.InLot(c.Request.Context(), repository.LotFilter{Q: c.Query("q"), RoomID: roomID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"vehicles": vehicles})
}

func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"from":      stats.From,
		"to":        stats.To,
		"summary":   stats.Summary,
		"by_status": stats.ByStatus,
		"by_day":    stats.ByDay,
	})
}

// bindOptional binds a JSON body that may be absent entirely.
func bindOptional(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, validator.Message(err))
		return false
	}
	return true
}
