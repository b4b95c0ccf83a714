package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/domora/internal/access"
	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/mocks"
	"github.com/Domenick1991/domora/internal/service/account"
	"github.com/Domenick1991/domora/internal/service/catalog"
	"github.com/Domenick1991/domora/internal/service/pricing"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

type MockAccountUseCase struct {
	mock.Mock
}

func (m *MockAccountUseCase) Register(ctx context.Context, input account.RegisterInput) (*account.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.AuthResult), args.Error(1)
}

func (m *MockAccountUseCase) Login(ctx context.Context, input account.LoginInput) (*account.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.AuthResult), args.Error(1)
}

func (m *MockAccountUseCase) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockCatalogUseCase struct {
	mock.Mock
}

func (m *MockCatalogUseCase) ListPackages(ctx context.Context, st domain.ServiceType) ([]domain.ServicePackage, error) {
	args := m.Called(ctx, st)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServicePackage), args.Error(1)
}

func (m *MockCatalogUseCase) ListAddons(ctx context.Context, st domain.ServiceType) ([]domain.ServiceAddon, error) {
	args := m.Called(ctx, st)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceAddon), args.Error(1)
}

func (m *MockCatalogUseCase) Seed(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPricingUseCase struct {
	mock.Mock
}

func (m *MockPricingUseCase) Estimate(ctx context.Context, input pricing.EstimateInput) (*domain.PriceEstimate, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceEstimate), args.Error(1)
}

func (m *MockPricingUseCase) Locate(ctx context.Context, address *domain.Address) bool {
	return m.Called(ctx, address).Bool(0)
}

type routerFixture struct {
	accounts *MockAccountUseCase
	profiles *mocks.ProviderRepository
	catalog  *MockCatalogUseCase
	pricing  *MockPricingUseCase
	bookings *MockBookingUseCase
	payments *MockPaymentUseCase
	engine   *gin.Engine
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		accounts: &MockAccountUseCase{},
		profiles: &mocks.ProviderRepository{},
		catalog:  &MockCatalogUseCase{},
		pricing:  &MockPricingUseCase{},
		bookings: &MockBookingUseCase{},
		payments: &MockPaymentUseCase{},
		engine:   gin.New(),
	}
	Mount(f.engine, Services{
		Accounts: f.accounts,
		Profiles: f.profiles,
		Catalog:  f.catalog,
		Pricing:  f.pricing,
		Bookings: f.bookings,
		Payments: f.payments,
	})
	return f
}

func (f *routerFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.NotFoundf("booking"), http.StatusNotFound},
		{errors.Forbiddenf("booking"), http.StatusForbidden},
		{errors.Unauthorizedf("token"), http.StatusUnauthorized},
		{errors.AlreadyExistsf("payment"), http.StatusBadRequest},
		{errors.BadRequestf("signature"), http.StatusBadRequest},
		{errors.NotValidf("service type"), http.StatusUnprocessableEntity},
		{fmt.Errorf("geocode: %w: %w", domain.ErrUpstream, errors.New("timeout")), http.StatusBadGateway},
		{errors.Annotate(errors.NotFoundf("package"), "estimate"), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRequireAuth(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		f := newRouterFixture()
		w := f.do("GET", "/api/bookings", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	})

	t.Run("invalid token", func(t *testing.T) {
		f := newRouterFixture()
		f.accounts.On("Authenticate", mock.Anything, "bad").Return(nil, errors.Unauthorizedf("invalid authentication credentials"))
		w := f.do("GET", "/api/bookings", "bad", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		f.accounts.AssertExpectations(t)
	})

	t.Run("provider requester carries profile id", func(t *testing.T) {
		f := newRouterFixture()
		user := &domain.User{ID: "prov-user-1", Email: "bob@test.com", Role: domain.RoleProvider, IsActive: true}
		f.accounts.On("Authenticate", mock.Anything, "tok").Return(user, nil)
		f.profiles.On("GetByUserID", mock.Anything, "prov-user-1").Return(&domain.ProviderProfile{ID: "profile-1", UserID: "prov-user-1"}, nil)
		want := access.Requester{UserID: "prov-user-1", Email: "bob@test.com", Role: domain.RoleProvider, ProviderID: "profile-1"}
		f.bookings.On("ListBookings", mock.Anything, want).Return([]domain.Booking{}, nil)

		w := f.do("GET", "/api/bookings", "tok", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
		f.bookings.AssertExpectations(t)
	})
}

func TestAuthRoutes(t *testing.T) {
	f := newRouterFixture()
	user := &domain.User{ID: "cust-1", Email: "ana@test.com", FullName: "Ana", Role: domain.RoleCustomer, IsActive: true}

	f.accounts.On("Register", mock.Anything, account.RegisterInput{
		Email: "ana@test.com", FullName: "Ana", Password: "secret1",
	}).Return(&account.AuthResult{AccessToken: "tok", TokenType: "bearer", User: user}, nil)
	w := f.do("POST", "/api/auth/register", "", `{"email":"ana@test.com","full_name":"Ana","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res account.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "tok", res.AccessToken)
	assert.NotContains(t, w.Body.String(), "password")

	w = f.do("POST", "/api/auth/register", "", `{"email":"ana@test.com","full_name":"Ana","password":"secret1","role":"superuser"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	f.accounts.On("Login", mock.Anything, account.LoginInput{Email: "ana@test.com", Password: "wrong"}).
		Return(nil, errors.Unauthorizedf("invalid email or password"))
	w = f.do("POST", "/api/auth/login", "", `{"email":"ana@test.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.accounts.On("Authenticate", mock.Anything, "tok").Return(user, nil)
	w = f.do("GET", "/api/auth/me", "tok", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ana@test.com"`)

	f.accounts.AssertExpectations(t)
}

func TestCatalogRoutes(t *testing.T) {
	f := newRouterFixture()
	f.catalog.On("ListPackages", mock.Anything, domain.ServiceCarWashing).
		Return([]domain.ServicePackage{{ID: "pkg-1", ServiceType: domain.ServiceCarWashing}}, nil)
	f.catalog.On("ListAddons", mock.Anything, domain.ServiceType("")).Return([]domain.ServiceAddon{}, nil)
	f.catalog.On("ListPackages", mock.Anything, domain.ServiceType("plumbing")).
		Return(nil, errors.NotValidf("service type %q", "plumbing"))

	w := f.do("GET", "/api/services/packages?service_type=car_washing", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pkg-1")

	w = f.do("GET", "/api/services/addons", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do("GET", "/api/services/packages?service_type=plumbing", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	f.catalog.AssertExpectations(t)
}

func TestPriceEstimateRoute(t *testing.T) {
	f := newRouterFixture()
	f.pricing.On("Estimate", mock.Anything, mock.MatchedBy(func(in pricing.EstimateInput) bool {
		return in.PackageID == "pkg-1" && in.Address != nil && in.Address.City == "Ljubljana"
	})).Return(&domain.PriceEstimate{BasePrice: 55, TotalPrice: 55, Currency: "EUR"}, nil)
	f.pricing.On("Estimate", mock.Anything, mock.MatchedBy(func(in pricing.EstimateInput) bool {
		return in.PackageID == "missing"
	})).Return(nil, errors.NotFoundf("package %q", "missing"))

	addr := `{"street":"Slovenska cesta 1","city":"Ljubljana","postal_code":"1000"}`
	w := f.do("POST", "/api/services/price-estimate", "", `{"package_id":"pkg-1","service_address":`+addr+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total_price":55`)

	w = f.do("POST", "/api/services/price-estimate", "", `{"package_id":"missing","service_address":`+addr+`}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do("POST", "/api/services/price-estimate", "", `{"package_id":"pkg-1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do("POST", "/api/services/price-estimate", "", `{"package_id":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.pricing.AssertExpectations(t)
}

var _ catalog.CatalogUseCase = (*MockCatalogUseCase)(nil)
