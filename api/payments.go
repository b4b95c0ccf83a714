package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"

	"github.com/Domenick1991/domora/internal/service/payment"
)

const signatureHeader = "Stripe-Signature"

type PaymentHandler struct {
	service payment.PaymentUseCase
}

func NewPaymentHandler(service payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Register mounts the authenticated payment routes.
func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/create-checkout", h.createCheckout)
	router.GET("/status/:session_id", h.status)
}

// RegisterWebhook mounts the provider callback, which carries no bearer token.
func (h *PaymentHandler) RegisterWebhook(router *gin.RouterGroup) {
	router.POST("/stripe", h.webhook)
}

func (h *PaymentHandler) createCheckout(c *gin.Context) {
	bookingID := c.Query("booking_id")
	if bookingID == "" {
		writeError(c, errors.NotValidf("empty booking_id"))
		return
	}
	res, err := h.service.CreateCheckout(c.Request.Context(), requester(c), bookingID, requestBaseURL(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) status(c *gin.Context) {
	res, err := h.service.GetStatus(c.Request.Context(), requester(c), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		writeError(c, errors.BadRequestf("read webhook body: %v", err))
		return
	}
	if err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		if statusFor(err) == http.StatusBadRequest {
			writeError(c, err)
			return
		}
		// Every processing failure is a 400 to the provider, which retries it.
		logger.Errorf("webhook processing: %v", errors.ErrorStack(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "webhook processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// requestBaseURL is the scheme and host the client used, honouring
// X-Forwarded-Proto from a reverse proxy.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + c.Request.Host
}
