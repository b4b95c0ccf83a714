package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/segmentio/kafka-go"
)

var logger = loggo.GetLogger("domora.kafka")

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

// Publish writes payload as JSON to topic, keyed by key.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Annotate(err, "marshal payload")
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return errors.Annotatef(err, "write message to %s", topic)
	}

	logger.Debugf("published to %s, key %s", topic, key)
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads the partition list.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return errors.NotValidf("empty broker list")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return errors.Annotate(err, "connect to kafka")
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return errors.Annotate(err, "read partitions")
	}
	logger.Infof("connected to kafka, %d partitions visible", len(partitions))
	return nil
}
