package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/domora/internal/access"
	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/service/payment"
)

type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) CreateCheckout(ctx context.Context, who access.Requester, bookingID, baseURL string) (*payment.CheckoutResult, error) {
	args := m.Called(ctx, who, bookingID, baseURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutResult), args.Error(1)
}

func (m *MockPaymentUseCase) GetStatus(ctx context.Context, who access.Requester, sessionID string) (*payment.StatusResult, error) {
	args := m.Called(ctx, who, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.StatusResult), args.Error(1)
}

func (m *MockPaymentUseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

func authedFixture(t *testing.T) (*routerFixture, access.Requester) {
	t.Helper()
	f := newRouterFixture()
	user := &domain.User{ID: "cust-1", Email: "ana@test.com", Role: domain.RoleCustomer, IsActive: true}
	f.accounts.On("Authenticate", mock.Anything, "tok").Return(user, nil)
	return f, access.Requester{UserID: "cust-1", Email: "ana@test.com", Role: domain.RoleCustomer}
}

func TestPaymentRoutes_CreateCheckout(t *testing.T) {
	f, who := authedFixture(t)
	f.payments.On("CreateCheckout", mock.Anything, who, "bk-1", "http://example.com").
		Return(&payment.CheckoutResult{CheckoutURL: "https://checkout.test/cs_1", SessionID: "cs_1"}, nil).Once()
	f.payments.On("CreateCheckout", mock.Anything, who, "bk-1", "http://example.com").
		Return(nil, errors.AlreadyExistsf("payment for booking %q", "bk-1")).Once()

	w := f.do("POST", "/api/payments/create-checkout?booking_id=bk-1", "tok", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"checkout_url":"https://checkout.test/cs_1","session_id":"cs_1"}`, w.Body.String())

	w = f.do("POST", "/api/payments/create-checkout?booking_id=bk-1", "tok", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do("POST", "/api/payments/create-checkout", "tok", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	f.payments.AssertExpectations(t)
}

func TestPaymentRoutes_CreateCheckoutUpstream(t *testing.T) {
	f, who := authedFixture(t)
	f.payments.On("CreateCheckout", mock.Anything, who, "bk-1", mock.Anything).
		Return(nil, errors.Annotate(domain.ErrUpstream, "create checkout session"))

	w := f.do("POST", "/api/payments/create-checkout?booking_id=bk-1", "tok", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upstream service unavailable")
}

func TestPaymentRoutes_Status(t *testing.T) {
	f, who := authedFixture(t)
	f.payments.On("GetStatus", mock.Anything, who, "cs_1").Return(&payment.StatusResult{
		SessionID: "cs_1", Status: "complete", PaymentStatus: "paid", AmountTotal: 7550, Currency: "eur",
	}, nil)
	f.payments.On("GetStatus", mock.Anything, who, "cs_other").Return(nil, errors.Forbiddenf("payment"))

	w := f.do("GET", "/api/payments/status/cs_1", "tok", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session_id":"cs_1","status":"complete","payment_status":"paid","amount_total":7550,"currency":"eur"}`, w.Body.String())

	w = f.do("GET", "/api/payments/status/cs_other", "tok", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPaymentRoutes_Webhook(t *testing.T) {
	payload := `{"id":"evt_1","type":"checkout.session.completed"}`

	t.Run("accepted", func(t *testing.T) {
		f := newRouterFixture()
		f.payments.On("HandleWebhook", mock.Anything, []byte(payload), "t=1,v1=abc").Return(nil)

		w := doWithHeader(f, "POST", "/api/webhooks/stripe", payload, signatureHeader, "t=1,v1=abc")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
		f.payments.AssertExpectations(t)
	})

	t.Run("bad signature", func(t *testing.T) {
		f := newRouterFixture()
		f.payments.On("HandleWebhook", mock.Anything, []byte(payload), "forged").Return(errors.BadRequestf("invalid webhook signature"))

		w := doWithHeader(f, "POST", "/api/webhooks/stripe", payload, signatureHeader, "forged")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("processing failure", func(t *testing.T) {
		f := newRouterFixture()
		f.payments.On("HandleWebhook", mock.Anything, []byte(payload), "t=1,v1=abc").Return(errors.New("connection reset"))

		w := doWithHeader(f, "POST", "/api/webhooks/stripe", payload, signatureHeader, "t=1,v1=abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "webhook processing failed")
	})

	for name, procErr := range map[string]error{
		"not found": errors.NotFoundf("booking bk-1"),
		"not valid": errors.NotValidf("session metadata"),
		"upstream":  errors.Annotate(domain.ErrUpstream, "retrieve session"),
		"forbidden": errors.Forbiddenf("transaction"),
	} {
		t.Run(name+" is reported as 400", func(t *testing.T) {
			f := newRouterFixture()
			f.payments.On("HandleWebhook", mock.Anything, []byte(payload), "t=1,v1=abc").Return(procErr)

			w := doWithHeader(f, "POST", "/api/webhooks/stripe", payload, signatureHeader, "t=1,v1=abc")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "webhook processing failed")
		})
	}
}

func doWithHeader(f *routerFixture, method, path, body, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(header, value)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}
