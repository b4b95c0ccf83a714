package mq

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

var logger = loggo.GetLogger("domora.mq")

type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewConsumer declares a durable queue bound to exchange for each routing key.
func NewConsumer(url, exchange, queue string, keys []string) (*Consumer, error) {
	conn, ch, err := open(url, exchange)
	if err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Annotate(err, "declare queue")
	}
	for _, rk := range keys {
		if err := ch.QueueBind(q.Name, rk, exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, errors.Annotatef(err, "bind %s", rk)
		}
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name}, nil
}

// Consume delivers messages to handler until ctx is done. A message is acked
// when handler succeeds and requeued once when it fails.
func (c *Consumer) Consume(ctx context.Context, handler func(ctx context.Context, key string, value []byte) error) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Annotate(err, "start consuming")
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := handler(ctx, d.MessageId, d.Body); err != nil {
				logger.Warningf("handle message %s: %v", d.MessageId, err)
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
