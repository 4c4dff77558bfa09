package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

type Balancer int

const (
	RoundRobin Balancer = iota
	Hash
)

type RequiredAcks = sarama.RequiredAcks

const (
	NoResponse   = sarama.NoResponse
	RequireOne   = sarama.WaitForLocal
	RequireAll   = sarama.WaitForAll
	defaultRetry = 5
)

// Header is a single kafka record header.
type Header struct {
	Key   string
	Value []byte
}

type Producer interface {
	PushMessage(ctx context.Context, key, value []byte, topic string, headers ...Header) (partition int32, offset int64, err error)
	Close() error
}

type ProducerOption func(cfg *sarama.Config)

func WithBalancer(b Balancer) ProducerOption {
	return func(cfg *sarama.Config) {
		switch b {
		case Hash:
			cfg.Producer.Partitioner = sarama.NewHashPartitioner
		default:
			cfg.Producer.Partitioner = sarama.NewRoundRobinPartitioner
		}
	}
}

func WithRequiredAcks(acks RequiredAcks) ProducerOption {
	return func(cfg *sarama.Config) {
		cfg.Producer.RequiredAcks = acks
	}
}

func WithClientID(id string) ProducerOption {
	return func(cfg *sarama.Config) {
		cfg.ClientID = id
	}
}

type producer struct {
	sp sarama.SyncProducer
}

// NewProducer builds an idempotent synchronous producer. Idempotence needs
// acks from all in-sync replicas and a single in-flight request.
func NewProducer(brokers []string, opts ...ProducerOption) (Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Retry.Max = defaultRetry
	cfg.Producer.RequiredAcks = RequireAll
	cfg.Producer.Partitioner = sarama.NewRoundRobinPartitioner

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Producer.RequiredAcks == RequireAll {
		cfg.Producer.Idempotent = true
		cfg.Net.MaxOpenRequests = 1
		cfg.Version = sarama.V2_1_0_0
	}

	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}

	return &producer{sp: sp}, nil
}

func newProducerFrom(sp sarama.SyncProducer) Producer {
	return &producer{sp: sp}
}

func (p *producer) PushMessage(ctx context.Context, key, value []byte, topic string, headers ...Header) (int32, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	for _, h := range headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(h.Key), Value: h.Value})
	}

	partition, offset, err := p.sp.SendMessage(msg)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to send message: %w", err)
	}

	return partition, offset, nil
}

func (p *producer) Close() error {
	return p.sp.Close()
}
