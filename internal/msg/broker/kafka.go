package broker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taskhub/pkg/kafka"
)

type KafkaConfig struct {
	Brokers    []string
	Topic      string
	BufferSize int
}

// Kafka publishes to a single topic; each subscription is its own consumer
// group, which gives every subscriber a complete copy of the stream. Records
// are keyed by Message.Key and hash partitioned, so one aggregate always
// lands on one partition.
type Kafka struct {
	cfg      KafkaConfig
	producer kafka.Producer
	newGroup func(groupID string) (kafka.ConsumerGroupRunner, error)
}

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	producer, err := kafka.NewProducer(
		cfg.Brokers,
		kafka.WithBalancer(kafka.Hash),
		kafka.WithRequiredAcks(kafka.RequireAll),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init kafka producer: %w", err)
	}

	newGroup := func(groupID string) (kafka.ConsumerGroupRunner, error) {
		return kafka.NewConsumerGroupRunner(
			cfg.Brokers,
			groupID,
			[]string{cfg.Topic},
			cfg.BufferSize,
			kafka.WithBalancerConsumer(kafka.RoundrobinBalanceStrategy),
			kafka.WithOldestOffset(),
		)
	}

	return &Kafka{cfg: cfg, producer: producer, newGroup: newGroup}, nil
}

func (k *Kafka) Publish(ctx context.Context, msg Message) error {
	partitionKey := msg.Key
	if partitionKey == uuid.Nil {
		partitionKey = msg.ID
	}

	key, err := partitionKey.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal message id: %w", err)
	}

	_, _, err = k.producer.PushMessage(ctx, key, msg.Body, k.cfg.Topic,
		kafka.Header{Key: HeaderMessageType, Value: []byte(msg.Type)},
		kafka.Header{Key: HeaderMessageID, Value: []byte(msg.ID.String())},
	)
	if err != nil {
		return fmt.Errorf("failed to push message: %w", err)
	}

	return nil
}

func (k *Kafka) Subscribe(name string) (Subscription, error) {
	groupID := k.cfg.Topic + "." + name

	runner, err := k.newGroup(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return NewKafkaSubscription(runner), nil
}

// NewKafkaSubscription adapts a running consumer group to a Subscription.
func NewKafkaSubscription(runner kafka.ConsumerGroupRunner) Subscription {
	return &kafkaSubscription{
		runner:     runner,
		acks:       newPartitionAcks(),
		deliveries: make(chan Delivery),
		errs:       make(chan error, 1),
	}
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

type kafkaSubscription struct {
	runner     kafka.ConsumerGroupRunner
	acks       *partitionAcks
	deliveries chan Delivery
	errs       chan error
}

func (s *kafkaSubscription) Run(ctx context.Context) error {
	defer close(s.deliveries)

	go s.runner.Run()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-s.runner.Errors():
			s.pushError(err)
		case msg, ok := <-s.runner.Messages():
			if !ok {
				return nil
			}

			ack := s.acks.track(msg.Message.Topic, msg.Message.Partition, msg.Mark)

			delivery, err := toDelivery(msg, ack)
			if err != nil {
				// nothing sensible to do with it; commit and move on
				s.pushError(err)
				ack()

				continue
			}

			select {
			case s.deliveries <- delivery:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// toDelivery reads the id from its header. Records without one fall back to
// the key, which older producers set to the message id.
func toDelivery(msg *kafka.MessageWithMarkFunc, ack func()) (Delivery, error) {
	key, keyErr := uuid.FromBytes(msg.Message.Key)

	id := key

	if raw, ok := msg.Header(HeaderMessageID); ok {
		parsed, err := uuid.ParseBytes(raw)
		if err != nil {
			return Delivery{}, fmt.Errorf("failed to parse message id: %w", err)
		}

		id = parsed
	} else if keyErr != nil {
		return Delivery{}, fmt.Errorf("message at offset %d has no id: %w", msg.Message.Offset, keyErr)
	}

	messageType, _ := msg.Header(HeaderMessageType)

	return NewDelivery(Message{
		ID:   id,
		Key:  key,
		Type: string(messageType),
		Body: msg.Message.Value,
	}, ack), nil
}

func (s *kafkaSubscription) pushError(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

func (s *kafkaSubscription) Deliveries() <-chan Delivery {
	return s.deliveries
}

func (s *kafkaSubscription) Errors() <-chan error {
	return s.errs
}

func (s *kafkaSubscription) Close() error {
	return s.runner.Shutdown()
}
