// Package broker is the chat engine.  It owns the registry of live
// sessions, dispatches decoded commands against the shared Directory,
// History and ban Scheduler, and fans chat lines out to every
// authenticated session.
//
// Lock order is Broker.mu → Directory and Scheduler → Directory.  The
// scheduler's ban callbacks run outside its lock and may take
// Broker.mu; the broker never calls into the scheduler while holding
// Broker.mu.
package broker

import (
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"

	"chatd/internal/directory"
	"chatd/internal/history"
	"chatd/internal/metrics"
	"chatd/internal/moderation"
	"chatd/internal/protocol"
	"chatd/internal/session"
	"chatd/util"
)

// ErrClosed is returned by Serve once the broker has been closed.
var ErrClosed = errors.New("broker is closed")

// Options configure a Broker.
type Options struct {
	HistorySize     int
	StrikeThreshold int
	BanDuration     time.Duration

	OutboxSize   int
	WriteTimeout time.Duration
	MaxLineBytes int
	CommandRate  float64 // commands per second per session; 0 disables
	CommandBurst int

	// Directory defaults to an empty one with default hash parameters.
	Directory *directory.Directory
	Logger    *util.Logger
	Metrics   *metrics.Collector
}

// Broker is safe for concurrent use.
type Broker struct {
	opts    Options
	dir     *directory.Directory
	history *history.Ring
	bans    *moderation.Scheduler
	log     *util.Logger
	metrics *metrics.Collector

	// mu guards the registry.  Appending to history and enqueueing the
	// resulting line happen under it too, so every recipient sees chat
	// lines in history order.
	mu       sync.Mutex
	sessions map[string]*session.Session            // every live session by ID
	byNick   map[string]map[string]*session.Session // authenticated sessions
	closed   bool
}

// New builds a broker and its ban scheduler.
func New(opts Options) *Broker {
	dir := opts.Directory
	if dir == nil {
		dir = directory.New()
	}
	b := &Broker{
		opts:     opts,
		dir:      dir,
		history:  history.New(opts.HistorySize),
		log:      opts.Logger,
		metrics:  opts.Metrics,
		sessions: make(map[string]*session.Session),
		byNick:   make(map[string]map[string]*session.Session),
	}
	b.bans = moderation.New(dir, moderation.Options{
		Threshold: opts.StrikeThreshold,
		Duration:  opts.BanDuration,
		OnBan:     b.banned,
		OnLift:    b.lifted,
		Logger:    opts.Logger,
	})
	return b
}

// Directory returns the principal directory the broker works on.
func (b *Broker) Directory() *directory.Directory { return b.dir }

// History returns the chat history ring.
func (b *Broker) History() *history.Ring { return b.history }

// Sessions returns the number of live sessions.
func (b *Broker) Sessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// ── Registry ─────────────────────────────────────────────────────────

func (b *Broker) admit(s *session.Session) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.sessions[s.ID] = s
	return true
}

// login binds s to nick, adds it to the broadcast set and replays the
// history.  Holding mu keeps the replay and later broadcasts from
// overlapping.
func (b *Broker) login(s *session.Session, nick, greeting string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := s.Authenticate(nick); err != nil {
		return err
	}
	peers, ok := b.byNick[nick]
	if !ok {
		peers = make(map[string]*session.Session)
		b.byNick[nick] = peers
	}
	peers[s.ID] = s
	live := b.dir.NoteSessionStart(nick)
	s.Logger.Info("authenticated as %s (%d live sessions)", nick, live)

	b.deliver(s, greeting)
	msgs, ok := b.history.LastN()
	if !ok {
		b.deliver(s, protocol.NoHistory)
		return nil
	}
	b.deliver(s, protocol.HistoryHeader(len(msgs)))
	for _, m := range msgs {
		b.deliver(s, m.Line())
	}
	return nil
}

// retire removes s from the registry and releases its principal.
func (b *Broker) retire(s *session.Session) {
	s.Close()

	b.mu.Lock()
	delete(b.sessions, s.ID)
	nick, _ := s.Nickname()
	if peers, ok := b.byNick[nick]; ok {
		if _, bound := peers[s.ID]; bound {
			delete(peers, s.ID)
			if len(peers) == 0 {
				delete(b.byNick, nick)
			}
			b.dir.NoteSessionEnd(nick)
		}
	}
	b.mu.Unlock()

	b.metrics.ConnectionClosed()
}

// ── Fan-out ──────────────────────────────────────────────────────────

// broadcast appends a chat line to history and queues it for every
// authenticated session, the sender included.
func (b *Broker) broadcast(sender, text string) history.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg := b.history.Append(sender, text)
	line := msg.Line()
	n := 0
	for _, peers := range b.byNick {
		for _, s := range peers {
			if b.deliver(s, line) {
				n++
			}
		}
	}
	b.metrics.Broadcast(n)
	return msg
}

// notify queues line for every live session of nick.
func (b *Broker) notify(nick, line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.byNick[nick] {
		b.deliver(s, line)
	}
}

// deliver queues one line for s and accounts for dropped sessions.
func (b *Broker) deliver(s *session.Session, line string) bool {
	err := s.Send(line)
	if errors.Is(err, session.ErrOutboxFull) {
		b.metrics.SessionDropped()
	}
	return err == nil
}

// ── Ban callbacks ────────────────────────────────────────────────────

func (b *Broker) banned(p directory.Principal) {
	b.metrics.BanIssued()
	b.notify(p.Nickname, protocol.YouAreBanned(b.opts.BanDuration))
}

func (b *Broker) lifted(p directory.Principal) {
	b.metrics.BanLifted()
	b.notify(p.Nickname, protocol.BanLifted)
}

// ── Shutdown ─────────────────────────────────────────────────────────

// Close tells every session the server is going away, closes them and
// stops the ban scheduler.  Serve calls still running return once
// their connections drain.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	all := lo.Values(b.sessions)
	for _, s := range all {
		b.deliver(s, protocol.ShuttingDown)
	}
	b.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	b.bans.Close()
	b.log.Verbose("broker closed %d sessions", len(all))
}
