// Package moderation records strikes and runs the timed-ban state
// machine (Clear → Banned → Clear) for principals in a Directory.
//
// Bans live in a min-heap keyed by expiry.  A single expiry loop
// sleeps until the earliest deadline, lifts that ban and re-arms for
// the next one; it exits when the heap drains and is started again by
// the next ban.  The scheduler guards the start with an idle/running
// state so concurrent bans never spawn a second loop.
package moderation

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"chatd/internal/directory"
	"chatd/util"
)

// ErrClosed is returned by Strike after Close.
var ErrClosed = errors.New("ban scheduler is closed")

type loopState uint8

const (
	idle loopState = iota
	running
)

// Options configure a Scheduler.
type Options struct {
	Threshold int           // strikes that trigger a ban
	Duration  time.Duration // how long a ban lasts

	// OnBan and OnLift run after the state change, outside any lock.
	OnBan  func(directory.Principal)
	OnLift func(directory.Principal)

	Logger *util.Logger
}

// Result describes the outcome of one strike.
type Result struct {
	Principal directory.Principal
	Threshold int
	Banned    bool // this strike triggered the ban
}

// Scheduler is safe for concurrent use.
type Scheduler struct {
	dir  *directory.Directory
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu serialises the queue, the loop state and the directory
	// transitions made on the queue's behalf.  Lock order is
	// Scheduler.mu → Directory.
	mu     sync.Mutex
	queue  banQueue
	state  loopState
	closed bool

	starts atomic.Int64 // expiry loops started, for tests
}

// New returns an idle Scheduler over dir.
func New(dir *directory.Directory, opts Options) *Scheduler {
	if opts.Threshold < 1 {
		opts.Threshold = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{dir: dir, opts: opts, ctx: ctx, cancel: cancel}
}

// Strike records one strike by striker against nickname.  It fails
// with ErrBanned, ErrUnknownUser or ErrAlreadyBanned from the
// directory.  When the strike crosses the threshold the ban is queued
// in the same critical section that set it.
func (s *Scheduler) Strike(striker, nickname string) (Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result{}, ErrClosed
	}

	until := time.Now().Add(s.opts.Duration)
	p, err := s.dir.Strike(striker, nickname, s.opts.Threshold, until)
	if err != nil {
		s.mu.Unlock()
		return Result{}, err
	}

	res := Result{Principal: p, Threshold: s.opts.Threshold}
	if p.Banned {
		res.Banned = true
		heap.Push(&s.queue, banEntry{expiry: until, nickname: nickname})
		s.startLocked()
	}
	s.mu.Unlock()

	if res.Banned {
		s.opts.Logger.Info("%s banned until %s", nickname, until.Format(time.TimeOnly))
		if s.opts.OnBan != nil {
			s.opts.OnBan(p)
		}
	}
	return res, nil
}

// startLocked launches the expiry loop unless one is already running.
// Callers hold s.mu.
func (s *Scheduler) startLocked() {
	if s.state == running {
		return
	}
	s.state = running
	s.starts.Add(1)
	s.wg.Add(1)
	go s.run()
}

// run is the expiry loop.  Every ban has the same duration and
// deadlines come from the monotonic clock, so a newly queued entry
// never expires before the one the loop is already sleeping on.
func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		next, ok := s.queue.peek()
		if !ok || s.ctx.Err() != nil {
			s.state = idle
			s.mu.Unlock()
			return
		}

		wait := time.Until(next.expiry)
		if wait <= 0 {
			heap.Pop(&s.queue)
			p, lifted := s.dir.Lift(next.nickname)
			s.mu.Unlock()

			if lifted {
				s.opts.Logger.Info("ban on %s lifted", next.nickname)
				if s.opts.OnLift != nil {
					s.opts.OnLift(p)
				}
			}
			continue
		}
		s.mu.Unlock()

		s.opts.Logger.Debug("ban loop sleeping %s until %s is lifted", wait, next.nickname)
		tmr := time.NewTimer(wait)
		select {
		case <-s.ctx.Done():
			tmr.Stop()
		case <-tmr.C:
		}
	}
}

// Pending returns the number of queued bans.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Running reports whether the expiry loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == running
}

// Close stops the expiry loop and waits for it to exit.  Queued bans
// are left in place; they are not lifted.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
