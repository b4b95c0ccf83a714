// Package checkout talks to Stripe Checkout: it creates hosted payment
// sessions, reads their status and verifies webhook deliveries.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/juju/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Domenick1991/domora/internal/domain"
)

const (
	EventSessionCompleted             = "checkout.session.completed"
	EventSessionAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventSessionAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	EventSessionExpired               = "checkout.session.expired"

	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
	StatusExpired       = "expired"
)

// Session is the subset of a checkout session the payment flow needs.
type Session struct {
	ID            string            `json:"session_id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

type CreateSessionInput struct {
	Amount      float64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Event is a verified webhook delivery. Session is set for checkout.session.* events.
type Event struct {
	ID      string
	Type    string
	Session *Session
}

type Gateway interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type StripeGateway struct {
	sessions      session.Client
	webhookSecret string
}

type Option func(*StripeGateway)

// WithBackend replaces the Stripe API backend, e.g. to point at a test server.
func WithBackend(b stripe.Backend) Option {
	return func(g *StripeGateway) {
		g.sessions.B = b
	}
}

func NewStripeGateway(secretKey, webhookSecret string, opts ...Option) *StripeGateway {
	g := &StripeGateway{
		sessions:      session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		webhookSecret: webhookSecret,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *StripeGateway) CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(in.Currency)),
				UnitAmount: stripe.Int64(ToMinorUnits(in.Amount)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(in.ProductName),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w: %w", domain.ErrUpstream, err)
	}
	return fromStripe(s), nil
}

func (g *StripeGateway) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.sessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session %q: %w: %w", id, domain.ErrUpstream, err)
	}
	return fromStripe(s), nil
}

// ParseWebhook verifies the Stripe-Signature header against the payload.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.BadRequestf("webhook verification failed: %v", err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	if strings.HasPrefix(out.Type, "checkout.session.") && evt.Data != nil {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &s); err != nil {
			return nil, errors.BadRequestf("decode checkout session: %v", err)
		}
		out.Session = fromStripe(&s)
	}
	return out, nil
}

func fromStripe(s *stripe.CheckoutSession) *Session {
	return &Session{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}
}

// ToMinorUnits converts a decimal amount to cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

var _ Gateway = (*StripeGateway)(nil)
