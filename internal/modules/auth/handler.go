package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bluemoon/internal/config"
	"bluemoon/internal/pkg/response"
	"bluemoon/internal/pkg/validator"
)

// Handler manages login, logout and the public info endpoints.
type Handler struct {
	service  *Service
	cookie   config.SessionConfig
	building config.BuildingInfo
	ping     func() error
}

func NewHandler(service *Service, cookie config.SessionConfig, building config.BuildingInfo, ping func() error) *Handler {
	return &Handler{
		service:  service,
		cookie:   cookie,
		building: building,
		ping:     ping,
	}
}

func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	api.GET("/health", h.Health)
	api.GET("/dbcheck", h.DBCheck)
	api.GET("/building", h.Building)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.GET("/check-session", h.CheckSession)
}

func (h *Handler) RegisterProtectedRoutes(authed *gin.RouterGroup) {
	authed.GET("/me", h.Me)
}

func (h *Handler) Health(c *gin.Context) {
	response.OK(c, http.StatusOK, gin.H{"service": "bluemoon-api"})
}

func (h *Handler) DBCheck(c *gin.Context) {
	if err := h.ping(); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"db": true})
}

func (h *Handler) Building(c *gin.Context) {
	c.JSON(http.StatusOK, h.building)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, err.Error())
			return
		}
		response.Error(c, err)
		return
	}

	h.setCookie(c, token, int(h.cookie.TTL.Seconds()))
	response.OK(c, http.StatusOK, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

// Logout revokes the server-side session so a copied cookie stops working.
func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.CookieName)
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	h.setCookie(c, "", -1)
	response.OK(c, http.StatusOK, nil)
}

func (h *Handler) CheckSession(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.OK(c, http.StatusOK, gin.H{"logged_in": false})
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"logged_in": true,
		"user_id":   userID,
		"role":      c.GetString("role"),
	})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"user": toMeResponse(user)})
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(h.cookie.SameSite())
	c.SetCookie(h.cookie.CookieName, value, maxAge, "/", "", h.cookie.CookieSecure, true)
}
