// Package email delivers booking notifications to customers.
package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Domenick1991/domora/config"
	"github.com/Domenick1991/domora/internal/domain"
)

var logger = loggo.GetLogger("domora.email")

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	cfg  config.SMTPConfig
	send sendFunc
}

func NewSender(cfg config.SMTPConfig) *Sender {
	if cfg.Sender == "" {
		cfg.Sender = "no-reply@localhost"
	}
	return &Sender{cfg: cfg, send: smtp.SendMail}
}

// Send mails the customer about event. Without an SMTP host the message is
// only logged.
func (s *Sender) Send(ctx context.Context, event domain.BookingEvent) error {
	if event.Email == "" {
		logger.Debugf("no recipient for %s on booking %s", event.Type, event.BookingID)
		return nil
	}
	subject, body, ok := compose(event)
	if !ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.Host == "" {
		logger.Infof("smtp disabled, would send %q to %s", subject, event.Email)
		return nil
	}

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", s.cfg.Sender, event.Email, subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
		body

	if err := s.send(addr, auth, s.cfg.Sender, []string{event.Email}, []byte(msg)); err != nil {
		return errors.Annotatef(err, "send %s email for booking %s", event.Type, event.BookingID)
	}
	logger.Infof("sent %s email for booking %s", event.Type, event.BookingID)
	return nil
}

// HandleMessage decodes a notification published on the event bus and sends
// it. Undecodable messages are dropped.
func (s *Sender) HandleMessage(ctx context.Context, key string, value []byte) error {
	var event domain.BookingEvent
	if err := json.Unmarshal(value, &event); err != nil {
		logger.Warningf("drop undecodable notification %s: %v", key, err)
		return nil
	}
	return s.Send(ctx, event)
}

func compose(event domain.BookingEvent) (subject, body string, ok bool) {
	service := strings.ReplaceAll(string(event.ServiceType), "_", " ")
	when := event.ScheduledAt.Format("Monday, 2 January 2006 at 15:04")
	amount := fmt.Sprintf("%.2f %s", event.TotalPrice, strings.ToUpper(event.Currency))

	var b strings.Builder
	switch event.Type {
	case domain.EventBookingCreated:
		subject = "Your booking request was received"
		fmt.Fprintf(&b, "Thank you for booking %s on %s.\n\n", service, when)
		fmt.Fprintf(&b, "Estimated total: %s\n", amount)
		b.WriteString("Complete the payment to confirm your booking.\n")
	case domain.EventBookingConfirmed:
		subject = "Your booking is confirmed"
		fmt.Fprintf(&b, "We received your payment of %s.\n\n", amount)
		fmt.Fprintf(&b, "Your %s is confirmed for %s.\n", service, when)
	case domain.EventPaymentFailed:
		subject = "Your payment did not go through"
		fmt.Fprintf(&b, "The payment of %s for your %s on %s was not completed.\n", amount, service, when)
		b.WriteString("Please contact support to rebook.\n")
	default:
		return "", "", false
	}
	fmt.Fprintf(&b, "\nBooking reference: %s\n", event.BookingID)
	return subject, b.String(), true
}
