package resident

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

// RegisterRoutes mounts read routes on authed and mutations on admin.
func (h *Handler) RegisterRoutes(authed, admin *gin.RouterGroup) {
	authed.GET("/rooms", h.ListRooms)
	authed.GET("/rooms/:id", h.GetRoom)
	authed.GET("/rooms/:id/persons", h.ListRoomPersons)
	authed.GET("/persons", h.ListPersons)

	admin.POST("/rooms", h.CreateRoom)
	admin.PUT("/rooms/:id", h.UpdateRoom)
	admin.DELETE("/rooms/:id", h.DeleteRoom)
	admin.POST("/persons", h.CreatePerson)
	admin.POST("/persons/bulk_delete", h.BulkDeletePersons)
	admin.PUT("/persons/:id", h.UpdatePerson)
	admin.DELETE("/persons/:id", h.DeletePerson)
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context(), repository.RoomFilter{
		Q:        c.Query("q"),
		Status:   c.Query("status"),
		RoomType: c.Query("room_type"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid room id")
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	res, err := h.service.CreateRoom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := gin.H{"room_id": res.RoomID}
	if res.PersonID != nil {
		out["person_id"] = *res.PersonID
	}
	if res.UserID != nil {
		out["user_id"] = *res.UserID
	}
	response.OK(c, http.StatusCreated, out)
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid room id")
		return
	}

	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	room, err := h.service.UpdateRoom(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid room id")
		return
	}

	res, err := h.service.DeleteRoom(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"room_id":          res.RoomID,
		"deleted_fees":     res.DeletedFees,
		"deleted_payments": res.DeletedPayments,
		"deleted_vehicles": res.DeletedVehicles,
		"deleted_persons":  res.DeletedPersons,
		"detached_users":   res.DetachedUsers,
	})
}

func (h *Handler) ListRoomPersons(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid room id")
		return
	}
	h.listPersons(c, &id)
}

func (h *Handler) ListPersons(c *gin.Context) {
	roomID, ok := utils.OptionalID(c.Query("room_id"))
	if !ok {
		response.BadRequest(c, "invalid room_id")
		return
	}
	h.listPersons(c, roomID)
}

func (h *Handler) listPersons(c *gin.Context, roomID *int64) {
	persons, err := h.service.ListPersons(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"persons": persons})
}

func (h *Handler) CreatePerson(c *gin.Context) {
	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	p, err := h.service.CreatePerson(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"person": p})
}

func (h *Handler) UpdatePerson(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid person id")
		return
	}

	var req UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	p, err := h.service.UpdatePerson(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"person": p})
}

func (h *Handler) DeletePerson(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid person id")
		return
	}

	res, err := h.service.DeletePerson(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"deleted": res.Deleted, "deleted_ids": res.DeletedIDs})
}

// BulkDeletePersons skips heads of household; "deleted" may be lower than
// the number of ids sent.
func (h *Handler) BulkDeletePersons(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	res, err := h.service.BulkDeletePersons(c.Request.Context(), req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"requested":   res.Requested,
		"deleted":     res.Deleted,
		"deleted_ids": res.DeletedIDs,
	})
}
