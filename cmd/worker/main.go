package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Domenick1991/domora/config"
	"github.com/Domenick1991/domora/internal/email"
	"github.com/Domenick1991/domora/internal/kafka"
	"github.com/Domenick1991/domora/internal/mq"
)

var logger = loggo.GetLogger("domora.worker")

type consumer interface {
	Consume(ctx context.Context, handler func(ctx context.Context, key string, value []byte) error) error
	Close() error
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Criticalf("load config: %v", err)
		os.Exit(1)
	}
	if err := loggo.ConfigureLoggers(cfg.Log.Level); err != nil {
		logger.Warningf("log level %q: %v", cfg.Log.Level, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := openConsumer(cfg.Events)
	if err != nil {
		logger.Criticalf("%v", err)
		os.Exit(1)
	}
	defer c.Close()

	sender := email.NewSender(cfg.SMTP)
	logger.Infof("consuming %s notifications from %s", cfg.Events.NotificationsTopic, cfg.Events.Driver)
	if err := c.Consume(ctx, sender.HandleMessage); err != nil {
		logger.Errorf("consumer stopped: %v", err)
		os.Exit(1)
	}
	logger.Infof("worker stopped")
}

func openConsumer(cfg config.EventsConfig) (consumer, error) {
	switch cfg.Driver {
	case config.EventsKafka:
		return kafka.NewConsumer(cfg.Brokers, cfg.GroupID, cfg.NotificationsTopic), nil
	case config.EventsRabbitMQ:
		c, err := mq.NewConsumer(cfg.AMQPURL, cfg.Exchange, cfg.GroupID+"."+cfg.NotificationsTopic, []string{cfg.NotificationsTopic})
		if err != nil {
			return nil, errors.Annotate(err, "connect rabbitmq")
		}
		return c, nil
	default:
		return nil, errors.NotValidf("events.driver %q for the worker", cfg.Driver)
	}
}
