package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/domora/internal/access"
	"github.com/Domenick1991/domora/internal/service/account"
	"github.com/Domenick1991/domora/internal/service/booking"
	"github.com/Domenick1991/domora/internal/service/catalog"
	"github.com/Domenick1991/domora/internal/service/payment"
	"github.com/Domenick1991/domora/internal/service/pricing"
	"github.com/Domenick1991/domora/internal/service/provider"
)

type Services struct {
	Accounts  account.AccountUseCase
	Profiles  access.ProfileLookup
	Catalog   catalog.CatalogUseCase
	Pricing   pricing.PricingUseCase
	Bookings  booking.BookingUseCase
	Providers provider.ProviderUseCase
	Payments  payment.PaymentUseCase
}

// Mount registers every API route under /api.
func Mount(router gin.IRouter, s Services) {
	root := router.Group("/api")
	authed := root.Group("", RequireAuth(s.Accounts, s.Profiles))

	NewAuthHandler(s.Accounts).Register(root.Group("/auth"), authed.Group("/auth"))
	NewCatalogHandler(s.Catalog, s.Pricing).Register(root.Group("/services"))
	NewBookingHandler(s.Bookings).Register(authed.Group("/bookings"))
	NewProviderHandler(s.Providers).Register(authed.Group("/providers"))

	payments := NewPaymentHandler(s.Payments)
	payments.Register(authed.Group("/payments"))
	payments.RegisterWebhook(root.Group("/webhooks"))
}
