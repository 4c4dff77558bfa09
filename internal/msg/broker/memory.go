package broker

import (
	"context"
	"sync"
)

// Memory is an in-process broker. Every subscription gets its own buffered
// queue; Publish copies the message into all of them.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string]*memorySubscription
	buffer int
	closed bool
}

func NewMemory(buffer int) *Memory {
	return &Memory{
		subs:   make(map[string]*memorySubscription),
		buffer: buffer,
	}
}

func (m *Memory) Publish(ctx context.Context, msg Message) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	for _, sub := range m.subs {
		body := make([]byte, len(msg.Body))
		copy(body, msg.Body)

		cp := Message{ID: msg.ID, Type: msg.Type, Body: body}

		select {
		case sub.queue <- cp:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Subscribe returns the subscription registered under name, creating it on
// first use. Messages published before the first Subscribe are not replayed.
func (m *Memory) Subscribe(name string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	if sub, ok := m.subs[name]; ok {
		return sub, nil
	}

	sub := &memorySubscription{
		queue:      make(chan Message, m.buffer),
		deliveries: make(chan Delivery),
		errs:       make(chan error),
		done:       make(chan struct{}),
	}

	m.subs[name] = sub

	return sub, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true

	for _, sub := range m.subs {
		_ = sub.Close()
	}

	return nil
}

type memorySubscription struct {
	queue      chan Message
	deliveries chan Delivery
	errs       chan error
	done       chan struct{}
	once       sync.Once
}

func (s *memorySubscription) Run(ctx context.Context) error {
	defer close(s.deliveries)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case msg := <-s.queue:
			select {
			case s.deliveries <- NewDelivery(msg, func() {}):
			case <-ctx.Done():
				return nil
			case <-s.done:
				return nil
			}
		}
	}
}

func (s *memorySubscription) Deliveries() <-chan Delivery {
	return s.deliveries
}

func (s *memorySubscription) Errors() <-chan error {
	return s.errs
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
