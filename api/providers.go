package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/domora/internal/service/provider"
)

type ProviderHandler struct {
	service provider.ProviderUseCase
}

func NewProviderHandler(service provider.ProviderUseCase) *ProviderHandler {
	return &ProviderHandler{service: service}
}

func (h *ProviderHandler) Register(router *gin.RouterGroup) {
	router.POST("/profile", h.create)
	router.GET("/profile", h.get)
}

func (h *ProviderHandler) create(c *gin.Context) {
	var req provider.CreateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	profile, err := h.service.CreateProfile(c.Request.Context(), requester(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProviderHandler) get(c *gin.Context) {
	profile, err := h.service.GetOwnProfile(c.Request.Context(), requester(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
