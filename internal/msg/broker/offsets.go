package broker

import "sync"

// partitionAcks releases kafka offset marks in delivery order. Workers ack
// out of order, and a mark for offset n commits everything below n too, so
// a mark is held back until every earlier delivery of its partition is acked.
type partitionAcks struct {
	mu      sync.Mutex
	pending map[topicPartition][]*pendingAck
}

type topicPartition struct {
	topic     string
	partition int32
}

type pendingAck struct {
	done bool
	mark func()
}

func newPartitionAcks() *partitionAcks {
	return &partitionAcks{pending: make(map[topicPartition][]*pendingAck)}
}

// track queues a delivery behind the earlier ones of its partition and
// returns its ack. Calling the ack more than once has no extra effect.
func (p *partitionAcks) track(topic string, partition int32, mark func()) func() {
	key := topicPartition{topic: topic, partition: partition}
	entry := &pendingAck{mark: mark}

	p.mu.Lock()
	p.pending[key] = append(p.pending[key], entry)
	p.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() { p.ack(key, entry) })
	}
}

func (p *partitionAcks) ack(key topicPartition, entry *pendingAck) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry.done = true

	queue := p.pending[key]
	for len(queue) > 0 && queue[0].done {
		if queue[0].mark != nil {
			queue[0].mark()
		}

		queue[0] = nil
		queue = queue[1:]
	}

	if len(queue) == 0 {
		delete(p.pending, key)
		return
	}

	p.pending[key] = queue
}
