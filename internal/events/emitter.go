// Package events publishes booking lifecycle events to the configured bus.
package events

import (
	"context"
	"time"

	"github.com/juju/loggo/v2"

	"github.com/Domenick1991/domora/internal/domain"
)

var logger = loggo.GetLogger("domora.events")

const defaultPublishTimeout = 3 * time.Second

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Emitter publishes to the booking events topic and, when set, mirrors the
// event to the notifications topic consumed by the worker. Failures are
// logged and never returned: events are informational.
type Emitter struct {
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	publishTimeout     time.Duration
}

type Option func(*Emitter)

func WithNotificationsTopic(topic string) Option {
	return func(e *Emitter) {
		e.notificationsTopic = topic
	}
}

// WithPublishTimeout bounds each publish so an unreachable broker cannot
// hold up the request that emitted the event.
func WithPublishTimeout(d time.Duration) Option {
	return func(e *Emitter) {
		if d > 0 {
			e.publishTimeout = d
		}
	}
}

func NewEmitter(producer Producer, bookingTopic string, opts ...Option) *Emitter {
	e := &Emitter{producer: producer, bookingTopic: bookingTopic, publishTimeout: defaultPublishTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Emitter) Emit(ctx context.Context, event domain.BookingEvent) {
	if e == nil || e.producer == nil {
		return
	}
	for _, topic := range []string{e.bookingTopic, e.notificationsTopic} {
		if topic == "" {
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, e.publishTimeout)
		err := e.producer.Publish(pctx, topic, event.BookingID, event)
		cancel()
		if err != nil {
			logger.Warningf("publish %s for booking %s to %s: %v", event.Type, event.BookingID, topic, err)
		}
	}
}
