// Package mq carries domain events over a RabbitMQ topic exchange. Topic
// names become routing keys, so the same event names work for Kafka and
// RabbitMQ deployments.
package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/juju/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, ch, err := open(url, exchange)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func open(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, errors.Annotate(err, "dial rabbitmq")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, errors.Annotate(err, "open channel")
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, errors.Annotate(err, "declare exchange")
	}
	return conn, ch, nil
}

// Publish sends payload as JSON with topic as the routing key. key is
// carried as the message id.
func (p *Publisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return errors.Annotate(err, "marshal payload")
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    time.Now(),
		Body:         b,
	})
	return errors.Annotatef(err, "publish to %s", topic)
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
