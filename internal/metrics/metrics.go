// Package metrics keeps lock-free counters describing a running chat
// server.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks server activity.
type Collector struct {
	connectionsActive atomic.Int64
	connectionsTotal  atomic.Int64
	sessionsDropped   atomic.Int64

	commands      atomic.Int64
	commandErrors atomic.Int64
	messages      atomic.Int64
	deliveries    atomic.Int64

	strikes    atomic.Int64
	bansIssued atomic.Int64
	bansLifted atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connections ──────────────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// SessionDropped records a session aborted because it fell behind.
func (c *Collector) SessionDropped() {
	if c == nil {
		return
	}
	c.sessionsDropped.Add(1)
}

// ActiveConnections returns the current number of open connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// TotalConnections returns the lifetime connection count.
func (c *Collector) TotalConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsTotal.Load()
}

// ── Commands ─────────────────────────────────────────────────────────

// CommandHandled records one dispatched command.
func (c *Collector) CommandHandled() {
	if c == nil {
		return
	}
	c.commands.Add(1)
}

// CommandFailed records a command error and remembers its message.
func (c *Collector) CommandFailed(msg string) {
	if c == nil {
		return
	}
	c.commandErrors.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// Broadcast records one chat message fanned out to n sessions.
func (c *Collector) Broadcast(n int) {
	if c == nil {
		return
	}
	c.messages.Add(1)
	c.deliveries.Add(int64(n))
}

// Commands returns the number of commands dispatched.
func (c *Collector) Commands() int64 {
	if c == nil {
		return 0
	}
	return c.commands.Load()
}

// CommandErrors returns the number of failed commands.
func (c *Collector) CommandErrors() int64 {
	if c == nil {
		return 0
	}
	return c.commandErrors.Load()
}

// Messages returns the number of broadcast chat messages.
func (c *Collector) Messages() int64 {
	if c == nil {
		return 0
	}
	return c.messages.Load()
}

// ── Moderation ───────────────────────────────────────────────────────

// Strike records an accepted strike.
func (c *Collector) Strike() {
	if c == nil {
		return
	}
	c.strikes.Add(1)
}

// BanIssued records a principal entering the banned state.
func (c *Collector) BanIssued() {
	if c == nil {
		return
	}
	c.bansIssued.Add(1)
}

// BanLifted records a ban expiring.
func (c *Collector) BanLifted() {
	if c == nil {
		return
	}
	c.bansLifted.Add(1)
}

// Strikes returns the number of accepted strikes.
func (c *Collector) Strikes() int64 {
	if c == nil {
		return 0
	}
	return c.strikes.Load()
}

// BansActive returns issued minus lifted bans.
func (c *Collector) BansActive() int64 {
	if c == nil {
		return 0
	}
	return c.bansIssued.Load() - c.bansLifted.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime            string `json:"uptime"`
	ConnectionsActive int64  `json:"connections_active"`
	ConnectionsTotal  int64  `json:"connections_total"`
	SessionsDropped   int64  `json:"sessions_dropped"`
	Commands          int64  `json:"commands"`
	CommandErrors     int64  `json:"command_errors"`
	Messages          int64  `json:"messages"`
	Deliveries        int64  `json:"deliveries"`
	Strikes           int64  `json:"strikes"`
	BansIssued        int64  `json:"bans_issued"`
	BansLifted        int64  `json:"bans_lifted"`
	LastError         string `json:"last_error,omitempty"`
	LastErrorMessage  string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:            time.Since(c.startTime).Truncate(time.Second).String(),
		ConnectionsActive: c.connectionsActive.Load(),
		ConnectionsTotal:  c.connectionsTotal.Load(),
		SessionsDropped:   c.sessionsDropped.Load(),
		Commands:          c.commands.Load(),
		CommandErrors:     c.commandErrors.Load(),
		Messages:          c.messages.Load(),
		Deliveries:        c.deliveries.Load(),
		Strikes:           c.strikes.Load(),
		BansIssued:        c.bansIssued.Load(),
		BansLifted:        c.bansLifted.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
