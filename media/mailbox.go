package media

import (
	"sync"
	"sync/atomic"
)

// Mailbox is a single-slot handoff between a producer goroutine and the
// render loop. Put overwrites an unread frame; Take never blocks.
type Mailbox struct {
	mu      sync.Mutex
	frame   *Frame
	dropped atomic.Uint64
}

// Put stores f, replacing any frame that was not taken yet.
func (m *Mailbox) Put(f *Frame) {
	m.mu.Lock()
	if m.frame != nil {
		m.dropped.Add(1)
	}
	m.frame = f
	m.mu.Unlock()
}

// Take returns the pending frame and empties the slot, or nil.
func (m *Mailbox) Take() *Frame {
	m.mu.Lock()
	f := m.frame
	m.frame = nil
	m.mu.Unlock()
	return f
}

// Dropped reports how many frames were overwritten before being taken.
func (m *Mailbox) Dropped() uint64 {
	return m.dropped.Load()
}
