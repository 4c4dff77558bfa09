package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
)

type BalanceStrategy int

const (
	RoundrobinBalanceStrategy BalanceStrategy = iota
	RangeBalanceStrategy
	StickyBalanceStrategy
)

// MessageWithMarkFunc couples a record with the offset commit of its session.
type MessageWithMarkFunc struct {
	Message *sarama.ConsumerMessage
	mark    func()
}

func NewMessageWithMarkFunc(msg *sarama.ConsumerMessage, mark func()) *MessageWithMarkFunc {
	return &MessageWithMarkFunc{Message: msg, mark: mark}
}

func (m *MessageWithMarkFunc) Mark() {
	if m.mark != nil {
		m.mark()
	}
}

// Header returns the value of the first header named key.
func (m *MessageWithMarkFunc) Header(key string) ([]byte, bool) {
	for _, h := range m.Message.Headers {
		if h != nil && string(h.Key) == key {
			return h.Value, true
		}
	}

	return nil, false
}

type ConsumerGroupRunner interface {
	Run()
	Messages() <-chan *MessageWithMarkFunc
	Info() <-chan string
	Errors() <-chan error
	Shutdown() error
}

type ConsumerOption func(cfg *sarama.Config)

func WithBalancerConsumer(strategy BalanceStrategy) ConsumerOption {
	return func(cfg *sarama.Config) {
		switch strategy {
		case RangeBalanceStrategy:
			cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
		case StickyBalanceStrategy:
			cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
		default:
			cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
		}
	}
}

// WithOldestOffset makes a brand new group start from the beginning of the topic.
func WithOldestOffset() ConsumerOption {
	return func(cfg *sarama.Config) {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
}

type consumerGroupRunner struct {
	group   sarama.ConsumerGroup
	topics  []string
	groupID string

	messages chan *MessageWithMarkFunc
	info     chan string
	errs     chan error

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewConsumerGroupRunner(brokers []string, groupID string, topics []string, bufferSize int, opts ...ConsumerOption) (ConsumerGroupRunner, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.AutoCommit.Enable = true
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	for _, opt := range opts {
		opt(cfg)
	}

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group %q: %w", groupID, err)
	}

	return newRunner(group, groupID, topics, bufferSize), nil
}

func newRunner(group sarama.ConsumerGroup, groupID string, topics []string, bufferSize int) *consumerGroupRunner {
	ctx, cancel := context.WithCancel(context.Background())

	return &consumerGroupRunner{
		group:    group,
		topics:   topics,
		groupID:  groupID,
		messages: make(chan *MessageWithMarkFunc, bufferSize),
		info:     make(chan string, 1),
		errs:     make(chan error, bufferSize),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Run blocks until Shutdown is called. Consume is re-entered after every
// rebalance, as sarama requires.
func (r *consumerGroupRunner) Run() {
	defer close(r.done)
	defer close(r.messages)

	go r.forwardErrors()

	handler := &groupHandler{runner: r}

	r.info <- fmt.Sprintf("consumer group %s started on topics %v", r.groupID, r.topics)

	for {
		if err := r.group.Consume(r.ctx, r.topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}

			r.pushError(fmt.Errorf("consume: %w", err))
		}

		if r.ctx.Err() != nil {
			return
		}
	}
}

func (r *consumerGroupRunner) Messages() <-chan *MessageWithMarkFunc {
	return r.messages
}

func (r *consumerGroupRunner) Info() <-chan string {
	return r.info
}

func (r *consumerGroupRunner) Errors() <-chan error {
	return r.errs
}

func (r *consumerGroupRunner) Shutdown() error {
	var err error

	r.once.Do(func() {
		r.cancel()
		err = r.group.Close()
	})

	return err
}

func (r *consumerGroupRunner) forwardErrors() {
	for err := range r.group.Errors() {
		r.pushError(err)
	}
}

func (r *consumerGroupRunner) pushError(err error) {
	select {
	case r.errs <- err:
	default:
	}
}

type groupHandler struct {
	runner *consumerGroupRunner
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			wrapped := NewMessageWithMarkFunc(msg, func() { session.MarkMessage(msg, "") })

			select {
			case h.runner.messages <- wrapped:
			case <-session.Context().Done():
				return nil
			}
		}
	}
}
