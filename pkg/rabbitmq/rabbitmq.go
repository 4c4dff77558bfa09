package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultConfirmTimeout = 5 * time.Second

var (
	ErrPublishNacked = errors.New("message was nacked by broker")
	ErrClosed        = errors.New("rabbitmq connection is closed")
)

type Config struct {
	URL      string
	Exchange string
	Prefetch int
}

// Publishing is the subset of an AMQP publishing the pipeline sets.
type Publishing struct {
	MessageID string
	Type      string
	Body      []byte
	Timestamp time.Time
}

// RabbitMQ owns one connection with a confirm-mode channel for publishing.
// Consumers get their own channel each.
type RabbitMQ struct {
	cfg  Config
	conn *amqp.Connection

	mu  sync.Mutex
	pub *amqp.Channel
}

func New(cfg Config) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	pub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := pub.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := declareExchange(pub, cfg.Exchange); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQ{cfg: cfg, conn: conn, pub: pub}, nil
}

func declareExchange(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}

	return nil
}

// Publish sends a persistent message to the fanout exchange and waits for
// the broker confirm.
func (r *RabbitMQ) Publish(ctx context.Context, p Publishing) error {
	if r.conn.IsClosed() {
		return ErrClosed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	confirm, err := r.pub.PublishWithDeferredConfirmWithContext(ctx, r.cfg.Exchange, "", false, false, amqp.Publishing{
		MessageId:    p.MessageID,
		Type:         p.Type,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.Timestamp,
		Body:         p.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, defaultConfirmTimeout)
	defer cancel()

	acked, err := confirm.WaitContext(waitCtx)
	if err != nil {
		return fmt.Errorf("failed to wait for confirm: %w", err)
	}

	if !acked {
		return ErrPublishNacked
	}

	return nil
}

// Consume declares a durable queue bound to the exchange and starts a
// manual-ack consumer on a dedicated channel.
func (r *RabbitMQ) Consume(queue string) (<-chan amqp.Delivery, *amqp.Channel, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareExchange(ch, r.cfg.Exchange); err != nil {
		_ = ch.Close()
		return nil, nil, err
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}

	if err := ch.QueueBind(queue, "", r.cfg.Exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("failed to bind queue %q: %w", queue, err)
	}

	if r.cfg.Prefetch > 0 {
		if err := ch.Qos(r.cfg.Prefetch, 0, false); err != nil {
			_ = ch.Close()
			return nil, nil, fmt.Errorf("failed to set qos: %w", err)
		}
	}

	deliveries, err := ch.Consume(queue, queue, false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("failed to consume %q: %w", queue, err)
	}

	return deliveries, ch, nil
}

func (r *RabbitMQ) Close() error {
	if r.conn.IsClosed() {
		return nil
	}

	return r.conn.Close()
}
