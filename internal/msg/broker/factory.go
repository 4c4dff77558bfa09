package broker

import (
	"fmt"

	"taskhub/pkg/rabbitmq"
)

const (
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"
	DriverMemory   = "memory"
)

type Config struct {
	Driver     string
	Topic      string
	BufferSize int
	Brokers    []string
	RabbitURL  string
	// Exchange defaults to Topic.
	Exchange string
	Prefetch int
}

func New(cfg Config) (Broker, error) {
	switch cfg.Driver {
	case DriverKafka:
		return NewKafka(KafkaConfig{
			Brokers:    cfg.Brokers,
			Topic:      cfg.Topic,
			BufferSize: cfg.BufferSize,
		})
	case DriverRabbitMQ:
		exchange := cfg.Exchange
		if exchange == "" {
			exchange = cfg.Topic
		}

		return NewRabbitMQ(rabbitmq.Config{
			URL:      cfg.RabbitURL,
			Exchange: exchange,
			Prefetch: cfg.Prefetch,
		})
	case DriverMemory:
		return NewMemory(cfg.BufferSize), nil
	default:
		return nil, fmt.Errorf("unknown broker driver %q", cfg.Driver)
	}
}
