package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "domora"

// Collector is a prometheus.Collector for the marketplace services. All
// recording methods are safe to call on a nil *Collector.
type Collector struct {
	bookingsCreated    *prometheus.CounterVec
	checkoutSessions   *prometheus.CounterVec
	paymentsSettled    *prometheus.CounterVec
	webhookEvents      *prometheus.CounterVec
	travelFeeFallbacks *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		bookingsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "bookings_created_total",
				Help:      "The number of bookings created.",
			}, []string{"service_type"},
		),
		checkoutSessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "checkout_sessions_total",
				Help:      "Checkout session creation attempts by result.",
			}, []string{"result"},
		),
		paymentsSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "payments_settled_total",
				Help:      "Bookings whose payment was settled, by status and source.",
			}, []string{"status", "source"},
		),
		webhookEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "webhook_events_total",
				Help:      "Received payment webhook events.",
			}, []string{"type", "result"},
		),
		travelFeeFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "travel_fee_fallbacks_total",
				Help:      "Estimates that fell back to a zero travel fee.",
			}, []string{"reason"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			}, []string{"method", "route", "code"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.bookingsCreated.Describe(ch)
	c.checkoutSessions.Describe(ch)
	c.paymentsSettled.Describe(ch)
	c.webhookEvents.Describe(ch)
	c.travelFeeFallbacks.Describe(ch)
	c.requestDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.bookingsCreated.Collect(ch)
	c.checkoutSessions.Collect(ch)
	c.paymentsSettled.Collect(ch)
	c.webhookEvents.Collect(ch)
	c.travelFeeFallbacks.Collect(ch)
	c.requestDuration.Collect(ch)
}

func (c *Collector) BookingCreated(serviceType string) {
	if c == nil {
		return
	}
	c.bookingsCreated.WithLabelValues(serviceType).Inc()
}

func (c *Collector) CheckoutSession(result string) {
	if c == nil {
		return
	}
	c.checkoutSessions.WithLabelValues(result).Inc()
}

func (c *Collector) PaymentSettled(status, source string) {
	if c == nil {
		return
	}
	c.paymentsSettled.WithLabelValues(status, source).Inc()
}

func (c *Collector) WebhookEvent(eventType, result string) {
	if c == nil {
		return
	}
	c.webhookEvents.WithLabelValues(eventType, result).Inc()
}

func (c *Collector) TravelFeeFallback(reason string) {
	if c == nil {
		return
	}
	c.travelFeeFallbacks.WithLabelValues(reason).Inc()
}

func (c *Collector) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
