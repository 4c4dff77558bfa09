// Package broker hides the message transport behind a publish/subscribe
// contract: one topic, many named subscriptions, each receiving a full copy
// of every message at least once.
package broker

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

const (
	HeaderMessageType = "message_type"
	HeaderMessageID   = "message_id"
)

var ErrClosed = errors.New("broker is closed")

// Message is the envelope that travels through the broker. Body is the
// serialized event, Type drives consumer dispatch, ID is the dedupe key.
// Key groups messages that must share a partition; zero means ID.
type Message struct {
	ID   uuid.UUID
	Key  uuid.UUID
	Type string
	Body []byte
}

// Delivery is a received message. Ack must be called exactly once, after
// the consumer is done with it.
type Delivery struct {
	Message
	ack func()
}

func NewDelivery(msg Message, ack func()) Delivery {
	return Delivery{Message: msg, ack: ack}
}

func (d Delivery) Ack() {
	if d.ack != nil {
		d.ack()
	}
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

type Subscription interface {
	// Run pumps deliveries until ctx is done or the subscription is closed.
	Run(ctx context.Context) error
	Deliveries() <-chan Delivery
	// Errors carries transport errors that do not stop the subscription.
	Errors() <-chan error
	Close() error
}

type Broker interface {
	Publisher
	Subscribe(name string) (Subscription, error)
	Close() error
}
