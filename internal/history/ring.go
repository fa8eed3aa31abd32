// Package history keeps the bounded, append-only log of broadcast
// messages served to newly authenticated sessions.
package history

import (
	"fmt"
	"sync"
)

// Message is one broadcast line.  Seq is its position in the overall
// broadcast order, starting at 1.
type Message struct {
	Seq    uint64
	Sender string
	Text   string
}

// Line renders the message the way it is broadcast.
func (m Message) Line() string {
	return fmt.Sprintf("[%s says] %s", m.Sender, m.Text)
}

// Ring retains the N most recent messages.  Older messages are
// discarded, never mutated.  Ring is safe for concurrent use.
type Ring struct {
	mu    sync.RWMutex
	buf   []Message
	start int // index of the oldest message
	count int
	seq   uint64
}

// New returns a Ring holding at most size messages.  size < 1 is
// treated as 1.
func New(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{buf: make([]Message, size)}
}

// Append stores a message, evicting the oldest one when full, and
// returns it with its sequence number.
func (r *Ring) Append(sender, text string) Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	m := Message{Seq: r.seq, Sender: sender, Text: text}

	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = m
		r.count++
		return m
	}
	r.buf[r.start] = m
	r.start = (r.start + 1) % len(r.buf)
	return m
}

// LastN returns the retained messages, oldest first.  ok is false when
// nothing has been retained yet.
func (r *Ring) LastN() (msgs []Message, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil, false
	}
	msgs = make([]Message, r.count)
	for i := 0; i < r.count; i++ {
		msgs[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return msgs, true
}

// Len returns the number of retained messages.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Cap returns N.
func (r *Ring) Cap() int { return len(r.buf) }
