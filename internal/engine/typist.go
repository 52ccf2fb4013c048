package engine

import (
	"sync"
	"time"
)

type pendingReply struct {
	timer    *time.Timer
	onCancel func()
}

// Typist schedules delayed assistant replies, keyed by session id. Scheduled
// replies run on their own timers; nothing waits for them.
type Typist struct {
	mu      sync.Mutex
	next    uint64
	pending map[string]map[uint64]*pendingReply
}

// NewTypist creates an empty scheduler.
func NewTypist() *Typist {
	return &Typist{pending: make(map[string]map[uint64]*pendingReply)}
}

// Schedule runs fire after delay. If the reply is cancelled first, onCancel runs instead.
func (t *Typist) Schedule(sessionID string, delay time.Duration, fire, onCancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	id := t.next
	if t.pending[sessionID] == nil {
		t.pending[sessionID] = make(map[uint64]*pendingReply)
	}

	p := &pendingReply{onCancel: onCancel}
	t.pending[sessionID][id] = p
	p.timer = time.AfterFunc(delay, func() {
		if !t.remove(sessionID, id) {
			return
		}
		fire()
	})
}

// remove deletes a pending entry and reports whether it was still present.
func (t *Typist) remove(sessionID string, id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	replies := t.pending[sessionID]
	if _, ok := replies[id]; !ok {
		return false
	}
	delete(replies, id)
	if len(replies) == 0 {
		delete(t.pending, sessionID)
	}
	return true
}

// Cancel stops every reply still pending for sessionID and returns how many were stopped.
func (t *Typist) Cancel(sessionID string) int {
	t.mu.Lock()
	replies := t.pending[sessionID]
	delete(t.pending, sessionID)
	t.mu.Unlock()

	for _, p := range replies {
		p.timer.Stop()
		if p.onCancel != nil {
			p.onCancel()
		}
	}
	return len(replies)
}

// Pending returns the number of replies scheduled for sessionID.
func (t *Typist) Pending(sessionID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending[sessionID])
}
