package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/domora/internal/access"
	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/service/booking"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, who access.Requester, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, who, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, who access.Requester) ([]domain.Booking, error) {
	args := m.Called(ctx, who)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, who access.Requester, id string) (*domain.Booking, error) {
	args := m.Called(ctx, who, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) AssignProvider(ctx context.Context, bookingID, providerID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

var testCustomer = access.Requester{UserID: "cust-1", Email: "ana@test.com", Role: domain.RoleCustomer}

func newTestContext(w *httptest.ResponseRecorder, who access.Requester) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Set(requesterKey, who)
	return c
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	w := httptest.NewRecorder()
	c := newTestContext(w, testCustomer)

	scheduled := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	input := booking.CreateBookingInput{
		ServiceType: domain.ServiceHouseCleaning,
		PackageID:   "pkg-1",
		AddonIDs:    []string{"add-1"},
		ServiceAddress: domain.Address{
			Street: "Slovenska cesta 1", City: "Ljubljana", PostalCode: "1000",
		},
		ScheduledAt: scheduled,
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	created := &domain.Booking{
		ID:            "bk-1",
		CustomerID:    "cust-1",
		ServiceType:   domain.ServiceHouseCleaning,
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		ScheduledAt:   scheduled,
	}

	mockService.On("CreateBooking", c.Request.Context(), testCustomer, input).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response domain.Booking
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "bk-1", response.ID)
	assert.Equal(t, domain.BookingStatusPending, response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_validation(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	w := httptest.NewRecorder()
	c := newTestContext(w, testCustomer)
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewBufferString(`{"service_type":"plumbing","package_id":"pkg-1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.create(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var response errorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Fields, fieldError{Field: "ServiceType", Rule: "service_type"})
	mockService.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingHandler_create_forbidden(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	who := access.Requester{UserID: "prov-1", Role: domain.RoleProvider}
	w := httptest.NewRecorder()
	c := newTestContext(w, who)

	body := `{"service_type":"landscaping","package_id":"pkg-9","service_address":{"street":"a","city":"b","postal_code":"1"},"scheduled_datetime":"2026-05-01T10:00:00Z"}`
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", mock.Anything, who, mock.Anything).
		Return(nil, errors.Forbiddenf("only customers can create bookings"))

	handler.create(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	w := httptest.NewRecorder()
	c := newTestContext(w, testCustomer)
	c.Request = httptest.NewRequest("GET", "/api/bookings", nil)

	mockService.On("ListBookings", c.Request.Context(), testCustomer).
		Return([]domain.Booking{{ID: "bk-1"}, {ID: "bk-2"}}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []domain.Booking
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 2)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_get(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "found", code: http.StatusOK},
		{name: "missing", err: errors.NotFoundf("booking %q", "bk-1"), code: http.StatusNotFound},
		{name: "not owner", err: errors.Forbiddenf("booking %q", "bk-1"), code: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)

			w := httptest.NewRecorder()
			c := newTestContext(w, testCustomer)
			c.Params = gin.Params{{Key: "id", Value: "bk-1"}}
			c.Request = httptest.NewRequest("GET", "/api/bookings/bk-1", nil)

			if tt.err != nil {
				mockService.On("GetBooking", c.Request.Context(), testCustomer, "bk-1").Return(nil, tt.err)
			} else {
				mockService.On("GetBooking", c.Request.Context(), testCustomer, "bk-1").Return(&domain.Booking{ID: "bk-1"}, nil)
			}

			handler.get(c)

			assert.Equal(t, tt.code, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
