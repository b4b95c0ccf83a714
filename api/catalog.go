package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/service/catalog"
	"github.com/Domenick1991/domora/internal/service/pricing"
)

type CatalogHandler struct {
	catalog catalog.CatalogUseCase
	pricing pricing.PricingUseCase
}

func NewCatalogHandler(catalog catalog.CatalogUseCase, pricing pricing.PricingUseCase) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, pricing: pricing}
}

func (h *CatalogHandler) Register(router *gin.RouterGroup) {
	router.GET("/packages", h.packages)
	router.GET("/addons", h.addons)
	router.POST("/price-estimate", h.estimate)
}

func (h *CatalogHandler) packages(c *gin.Context) {
	packages, err := h.catalog.ListPackages(c.Request.Context(), domain.ServiceType(c.Query("service_type")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, packages)
}

func (h *CatalogHandler) addons(c *gin.Context) {
	addons, err := h.catalog.ListAddons(c.Request.Context(), domain.ServiceType(c.Query("service_type")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, addons)
}

func (h *CatalogHandler) estimate(c *gin.Context) {
	var req pricing.EstimateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	estimate, err := h.pricing.Estimate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}
