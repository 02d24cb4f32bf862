package players

import "sync"

// Outbound is one connection's queue of encoded frames. The actor only ever
// sends without blocking; the connection's writer drains C until Done fires.
type Outbound struct {
	ch   chan []byte
	done chan struct{}
	once sync.Once
}

func NewOutbound(buffer int) *Outbound {
	if buffer <= 0 {
		buffer = 1
	}
	return &Outbound{
		ch:   make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// Send enqueues frame. It reports false once the connection is gone; a full
// queue counts as gone and closes the outbound.
func (o *Outbound) Send(frame []byte) bool {
	select {
	case <-o.done:
		return false
	default:
	}
	select {
	case o.ch <- frame:
		return true
	default:
		o.Close()
		return false
	}
}

func (o *Outbound) C() <-chan []byte { return o.ch }

func (o *Outbound) Done() <-chan struct{} { return o.done }

// Close marks the connection gone. Safe to call more than once.
func (o *Outbound) Close() {
	o.once.Do(func() { close(o.done) })
}

func (o *Outbound) Closed() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}
