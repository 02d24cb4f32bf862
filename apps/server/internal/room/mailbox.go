package room

import "sync"

// mailbox is an unbounded multi-producer queue. Producers never block; the
// actor drains everything queued since the last wakeup in arrival order.
type mailbox struct {
	mu      sync.Mutex
	pending []Event
	signal  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) push(e Event) {
	m.mu.Lock()
	m.pending = append(m.pending, e)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) drain() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := m.pending
	m.pending = nil
	return batch
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
