package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/domora/internal/service/account"
)

type AuthHandler struct {
	service account.AccountUseCase
}

func NewAuthHandler(service account.AccountUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register mounts the public endpoints on router and /me on authed.
func (h *AuthHandler) Register(router, authed *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	authed.GET("/me", h.me)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req account.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req account.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, user)
}
