package checkout

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Domenick1991/domora/internal/domain"
)

const testWebhookSecret = "whsec_test_secret"

func newTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return NewStripeGateway("sk_test_123", testWebhookSecret, WithBackend(backend))
}

func TestStripeGateway_CreateSession(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		assert.Equal(t, "payment", form.Get("mode"))
		assert.Equal(t, "7550", form.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "eur", form.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "b1", form.Get("metadata[booking_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1","status":"open","payment_status":"unpaid","amount_total":7550,"currency":"eur"}`))
	})

	s, err := g.CreateSession(context.Background(), CreateSessionInput{
		Amount:      75.50,
		Currency:    "EUR",
		ProductName: "Essential Clean",
		SuccessURL:  "https://domora.test/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   "https://domora.test/payment-cancel",
		Metadata:    map[string]string{"booking_id": "b1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", s.URL)
	assert.Equal(t, PaymentStatusUnpaid, s.PaymentStatus)
	assert.Equal(t, int64(7550), s.AmountTotal)
}

func TestStripeGateway_CreateSessionUpstreamError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key provided"}}`))
	})

	_, err := g.CreateSession(context.Background(), CreateSessionInput{Amount: 10, Currency: "EUR", ProductName: "x"})
	assert.True(t, errors.Is(err, domain.ErrUpstream), "got %v", err)
}

func TestStripeGateway_GetSession(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","status":"complete","payment_status":"paid","amount_total":7550,"currency":"eur"}`))
	})

	s, err := g.GetSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, s.PaymentStatus)
	assert.Equal(t, "complete", s.Status)
	assert.Equal(t, "eur", s.Currency)
}

const completedEvent = `{
  "id": "evt_test_1",
  "object": "event",
  "type": "checkout.session.completed",
  "api_version": "2020-08-27",
  "data": {"object": {"id": "cs_test_1", "object": "checkout.session", "status": "complete", "payment_status": "paid", "amount_total": 7550, "currency": "eur", "metadata": {"booking_id": "b1"}}}
}`

func TestStripeGateway_ParseWebhook(t *testing.T) {
	g := NewStripeGateway("sk_test_123", testWebhookSecret)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(completedEvent),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})

	evt, err := g.ParseWebhook(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "evt_test_1", evt.ID)
	assert.Equal(t, EventSessionCompleted, evt.Type)
	require.NotNil(t, evt.Session)
	assert.Equal(t, "cs_test_1", evt.Session.ID)
	assert.Equal(t, PaymentStatusPaid, evt.Session.PaymentStatus)
	assert.Equal(t, "b1", evt.Session.Metadata["booking_id"])
}

func TestStripeGateway_ParseWebhookBadSignature(t *testing.T) {
	g := NewStripeGateway("sk_test_123", testWebhookSecret)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(completedEvent),
		Secret:  "whsec_other",
	})

	_, err := g.ParseWebhook(signed.Payload, signed.Header)
	assert.True(t, errors.Is(err, errors.BadRequest), "got %v", err)

	_, err = g.ParseWebhook([]byte(completedEvent), "")
	assert.True(t, errors.Is(err, errors.BadRequest), "got %v", err)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(7550), ToMinorUnits(75.50))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(0), ToMinorUnits(0))
}
