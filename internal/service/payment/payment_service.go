package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Domenick1991/domora/internal/access"
	"github.com/Domenick1991/domora/internal/checkout"
	"github.com/Domenick1991/domora/internal/domain"
	"github.com/Domenick1991/domora/internal/metrics"
	"github.com/Domenick1991/domora/internal/repository"
)

var logger = loggo.GetLogger("domora.payment")

const (
	sourcePoll    = "poll"
	sourceWebhook = "webhook"
)

type PaymentUseCase interface {
	CreateCheckout(ctx context.Context, who access.Requester, bookingID, baseURL string) (*CheckoutResult, error)
	GetStatus(ctx context.Context, who access.Requester, sessionID string) (*StatusResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// Cache guards checkout creation and remembers processed webhook events.
type Cache interface {
	AcquireCheckoutLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error)
	ReleaseCheckoutLock(ctx context.Context, bookingID string) error
	MarkEventProcessed(ctx context.Context, eventID string) (bool, error)
	ForgetEvent(ctx context.Context, eventID string) error
}

type Emitter interface {
	Emit(ctx context.Context, event domain.BookingEvent)
}

type Config struct {
	Currency    string
	PublicURL   string
	SuccessPath string
	CancelPath  string
	LockTTL     time.Duration
}

type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

type StatusResult struct {
	SessionID     string `json:"session_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

type PaymentService struct {
	bookings repository.BookingRepository
	payments repository.PaymentRepository
	users    repository.UserRepository
	gateway  checkout.Gateway
	cache    Cache
	events   Emitter
	clock    clock.Clock
	metrics  *metrics.Collector
	cfg      Config
}

type PaymentServiceOption func(*PaymentService)

func WithCache(c Cache) PaymentServiceOption {
	return func(s *PaymentService) {
		s.cache = c
	}
}

func WithEmitter(e Emitter) PaymentServiceOption {
	return func(s *PaymentService) {
		s.events = e
	}
}

// WithUsers enables customer emails on payment events.
func WithUsers(users repository.UserRepository) PaymentServiceOption {
	return func(s *PaymentService) {
		s.users = users
	}
}

func WithClock(clk clock.Clock) PaymentServiceOption {
	return func(s *PaymentService) {
		s.clock = clk
	}
}

func WithMetrics(m *metrics.Collector) PaymentServiceOption {
	return func(s *PaymentService) {
		s.metrics = m
	}
}

func NewPaymentService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	gateway checkout.Gateway,
	cfg Config,
	opts ...PaymentServiceOption,
) *PaymentService {
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	s := &PaymentService{
		bookings: bookings,
		payments: payments,
		gateway:  gateway,
		clock:    clock.WallClock,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCheckout opens a checkout session for the booking's total. The
// booking is claimed (payment pending to authorized) before the provider is
// called, so concurrent or repeated requests get a conflict instead of a
// second session.
func (s *PaymentService) CreateCheckout(ctx context.Context, who access.Requester, bookingID, baseURL string) (*CheckoutResult, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := access.Authorize(access.CreateCheckout, who, access.ForBooking(booking)); err != nil {
		return nil, err
	}
	if booking.PaymentStatus != domain.PaymentStatusPending {
		s.metrics.CheckoutSession("conflict")
		return nil, errors.AlreadyExistsf("payment for booking %q", bookingID)
	}

	if s.cache != nil {
		locked, err := s.cache.AcquireCheckoutLock(ctx, bookingID, s.cfg.LockTTL)
		switch {
		case err != nil:
			logger.Warningf("checkout lock unavailable, relying on claim: %v", err)
		case !locked:
			s.metrics.CheckoutSession("conflict")
			return nil, errors.AlreadyExistsf("checkout in progress for booking %q", bookingID)
		default:
			defer func() {
				if err := s.cache.ReleaseCheckoutLock(context.WithoutCancel(ctx), bookingID); err != nil {
					logger.Warningf("release checkout lock for booking %s: %v", bookingID, err)
				}
			}()
		}
	}

	now := s.clock.Now().UTC()
	claimed, err := s.bookings.ClaimCheckout(ctx, bookingID, now)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !claimed {
		s.metrics.CheckoutSession("conflict")
		return nil, errors.AlreadyExistsf("payment for booking %q", bookingID)
	}

	amount := booking.PriceEstimate.TotalPrice
	currency := booking.PriceEstimate.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}
	metadata := map[string]string{
		"booking_id":   bookingID,
		"user_id":      who.UserID,
		"service_type": string(booking.ServiceType),
	}
	base := strings.TrimRight(s.cfg.PublicURL, "/")
	if base == "" {
		base = strings.TrimRight(baseURL, "/")
	}

	session, err := s.gateway.CreateSession(ctx, checkout.CreateSessionInput{
		Amount:      amount,
		Currency:    currency,
		ProductName: productName(booking),
		SuccessURL:  base + s.cfg.SuccessPath,
		CancelURL:   base + s.cfg.CancelPath,
		Metadata:    metadata,
	})
	if err != nil {
		s.metrics.CheckoutSession("upstream_error")
		s.releaseClaim(ctx, bookingID)
		return nil, errors.Trace(err)
	}

	txn := &domain.PaymentTransaction{
		ID:            uuid.NewString(),
		BookingID:     bookingID,
		UserID:        who.UserID,
		SessionID:     session.ID,
		Amount:        amount,
		Currency:      strings.ToLower(currency),
		PaymentStatus: domain.PaymentStatusPending,
		Metadata:      metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.payments.Create(ctx, txn); err != nil {
		s.releaseClaim(ctx, bookingID)
		return nil, errors.Annotatef(err, "record session %s", session.ID)
	}
	if err := s.bookings.AttachSession(ctx, bookingID, session.ID, now); err != nil {
		return nil, errors.Trace(err)
	}

	s.metrics.CheckoutSession("created")
	logger.Infof("checkout session %s opened for booking %s (%.2f %s)", session.ID, bookingID, amount, currency)
	return &CheckoutResult{CheckoutURL: session.URL, SessionID: session.ID}, nil
}

// releaseClaim puts a claimed booking back to pending so checkout can be
// retried. It outlives request cancellation.
func (s *PaymentService) releaseClaim(ctx context.Context, bookingID string) {
	if err := s.bookings.ReleaseCheckout(context.WithoutCancel(ctx), bookingID, s.clock.Now().UTC()); err != nil {
		logger.Errorf("release checkout claim for booking %s: %v", bookingID, err)
	}
}

// GetStatus reports the provider's view of a session and reconciles local
// state with it.
func (s *PaymentService) GetStatus(ctx context.Context, who access.Requester, sessionID string) (*StatusResult, error) {
	txn, err := s.payments.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := access.Authorize(access.ViewPayment, who, access.ForTransaction(txn)); err != nil {
		return nil, err
	}

	session, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, errors.Trace(err)
	}

	switch {
	case session.PaymentStatus == checkout.PaymentStatusPaid:
		if err := s.settle(ctx, txn, domain.PaymentStatusCaptured, sourcePoll); err != nil {
			return nil, err
		}
	case session.Status == checkout.StatusExpired && !txn.PaymentStatus.Settled():
		if err := s.settle(ctx, txn, domain.PaymentStatusFailed, sourcePoll); err != nil {
			return nil, err
		}
	}

	return &StatusResult{
		SessionID:     session.ID,
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
		AmountTotal:   session.AmountTotal,
		Currency:      session.Currency,
	}, nil
}

// HandleWebhook verifies and applies a provider event. Redelivered events
// are acknowledged without reprocessing.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.metrics.WebhookEvent("unknown", "invalid")
		return err
	}

	if s.cache != nil && event.ID != "" {
		fresh, err := s.cache.MarkEventProcessed(ctx, event.ID)
		switch {
		case err != nil:
			logger.Warningf("webhook dedupe unavailable for %s: %v", event.ID, err)
		case !fresh:
			logger.Debugf("webhook event %s already processed", event.ID)
			s.metrics.WebhookEvent(event.Type, "duplicate")
			return nil
		}
	}

	if err := s.applyEvent(ctx, event); err != nil {
		s.metrics.WebhookEvent(event.Type, "failed")
		if s.cache != nil && event.ID != "" {
			if ferr := s.cache.ForgetEvent(context.WithoutCancel(ctx), event.ID); ferr != nil {
				logger.Warningf("forget webhook event %s: %v", event.ID, ferr)
			}
		}
		return err
	}
	return nil
}

func (s *PaymentService) applyEvent(ctx context.Context, event *checkout.Event) error {
	var status domain.PaymentStatus
	switch event.Type {
	case checkout.EventSessionCompleted, checkout.EventSessionAsyncPaymentSucceeded:
		status = domain.PaymentStatusCaptured
	case checkout.EventSessionExpired, checkout.EventSessionAsyncPaymentFailed:
		status = domain.PaymentStatusFailed
	default:
		s.metrics.WebhookEvent(event.Type, "ignored")
		return nil
	}
	if event.Session == nil || event.Session.ID == "" {
		return errors.BadRequestf("%s event %s without a session", event.Type, event.ID)
	}
	if event.Type == checkout.EventSessionCompleted && event.Session.PaymentStatus == checkout.PaymentStatusUnpaid {
		// Delayed payment methods complete the session before the money
		// arrives; async_payment_succeeded follows.
		s.metrics.WebhookEvent(event.Type, "ignored")
		return nil
	}

	txn, err := s.payments.GetBySessionID(ctx, event.Session.ID)
	if errors.Is(err, errors.NotFound) {
		logger.Warningf("%s for unknown session %s acknowledged", event.Type, event.Session.ID)
		s.metrics.WebhookEvent(event.Type, "unknown_session")
		return nil
	}
	if err != nil {
		return errors.Trace(err)
	}
	if err := s.settle(ctx, txn, status, sourceWebhook); err != nil {
		return err
	}
	s.metrics.WebhookEvent(event.Type, "processed")
	return nil
}

// settle applies the joint transaction and booking update. It is a no-op for
// records already settled.
func (s *PaymentService) settle(ctx context.Context, txn *domain.PaymentTransaction, status domain.PaymentStatus, source string) error {
	now := s.clock.Now().UTC()
	var (
		changed bool
		err     error
	)
	if status == domain.PaymentStatusCaptured {
		changed, err = s.payments.MarkCaptured(ctx, txn.SessionID, now)
	} else {
		changed, err = s.payments.MarkFailed(ctx, txn.SessionID, now)
	}
	if err != nil {
		return errors.Annotatef(err, "settle session %s as %s", txn.SessionID, status)
	}
	if !changed {
		return nil
	}

	logger.Infof("booking %s payment %s via %s", txn.BookingID, status, source)
	s.metrics.PaymentSettled(string(status), source)
	eventType := domain.EventBookingConfirmed
	if status == domain.PaymentStatusFailed {
		eventType = domain.EventPaymentFailed
	}
	s.emit(ctx, eventType, txn)
	return nil
}

func (s *PaymentService) emit(ctx context.Context, eventType string, txn *domain.PaymentTransaction) {
	if s.events == nil {
		return
	}
	booking, err := s.bookings.GetByID(ctx, txn.BookingID)
	if err != nil {
		logger.Warningf("load booking %s for %s event: %v", txn.BookingID, eventType, err)
		return
	}
	var email string
	if s.users != nil {
		if user, err := s.users.GetByID(ctx, booking.CustomerID); err == nil {
			email = user.Email
		}
	}
	s.events.Emit(ctx, domain.NewBookingEvent(eventType, booking, email, s.clock.Now().UTC()))
}

func productName(b *domain.Booking) string {
	name := strings.ReplaceAll(string(b.ServiceType), "_", " ")
	if name == "" {
		return "Service booking"
	}
	return strings.ToUpper(name[:1]) + name[1:] + " booking"
}

var _ PaymentUseCase = (*PaymentService)(nil)
