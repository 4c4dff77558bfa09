package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"taskhub/pkg/rabbitmq"
)

// RabbitMQ publishes to a durable fanout exchange. A subscription is a
// durable queue named after it and bound to the exchange.
type RabbitMQ struct {
	mq  *rabbitmq.RabbitMQ
	cfg rabbitmq.Config
}

func NewRabbitMQ(cfg rabbitmq.Config) (*RabbitMQ, error) {
	mq, err := rabbitmq.New(cfg)
	if err != nil {
		return nil, err
	}

	return &RabbitMQ{mq: mq, cfg: cfg}, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, msg Message) error {
	return r.mq.Publish(ctx, rabbitmq.Publishing{
		MessageID: msg.ID.String(),
		Type:      msg.Type,
		Body:      msg.Body,
		Timestamp: time.Now().UTC(),
	})
}

func (r *RabbitMQ) Subscribe(name string) (Subscription, error) {
	queue := r.cfg.Exchange + "." + name

	deliveries, ch, err := r.mq.Consume(queue)
	if err != nil {
		return nil, err
	}

	return &rabbitSubscription{
		source:     deliveries,
		ch:         ch,
		deliveries: make(chan Delivery),
		errs:       make(chan error, 1),
	}, nil
}

func (r *RabbitMQ) Close() error {
	return r.mq.Close()
}

type rabbitSubscription struct {
	source     <-chan amqp.Delivery
	ch         *amqp.Channel
	deliveries chan Delivery
	errs       chan error
}

func (s *rabbitSubscription) Run(ctx context.Context) error {
	defer close(s.deliveries)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-s.source:
			if !ok {
				return ErrClosed
			}

			id, err := uuid.Parse(d.MessageId)
			if err != nil {
				s.pushError(fmt.Errorf("failed to parse message id %q: %w", d.MessageId, err))
				_ = d.Ack(false)

				continue
			}

			delivery := NewDelivery(Message{ID: id, Type: d.Type, Body: d.Body}, func() {
				if err := d.Ack(false); err != nil {
					s.pushError(fmt.Errorf("failed to ack %s: %w", id, err))
				}
			})

			select {
			case s.deliveries <- delivery:
			case <-ctx.Done():
				// unacked, the broker will redeliver it
				return nil
			}
		}
	}
}

func (s *rabbitSubscription) pushError(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

func (s *rabbitSubscription) Deliveries() <-chan Delivery {
	return s.deliveries
}

func (s *rabbitSubscription) Errors() <-chan error {
	return s.errs
}

func (s *rabbitSubscription) Close() error {
	return s.ch.Close()
}
