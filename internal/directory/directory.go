// Package directory owns the set of known principals (nickname →
// credentials and moderation state) and the number of live sessions
// each principal has.
//
// Every check-and-update runs under a single mutex, so registration,
// strikes and ban lifts are atomic with respect to concurrent
// sessions.  Callers only ever receive copies of a Principal.
package directory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	cerrors "chatd/internal/errors"
)

// Principal is a registered identity and its moderation state.
type Principal struct {
	Nickname    string
	Strikes     int
	Banned      bool
	BannedUntil time.Time // zero unless Banned
}

type record struct {
	Principal
	passwordHash string
}

// Directory is safe for concurrent use.
type Directory struct {
	params HashParams

	mu         sync.RWMutex
	principals map[string]*record
	live       map[string]int // nickname → live sessions; absent = offline
}

// Option configures a Directory.
type Option func(*Directory)

// WithHashParams overrides the argon2id cost parameters.
func WithHashParams(p HashParams) Option {
	return func(d *Directory) { d.params = p }
}

// New returns an empty Directory.
func New(opts ...Option) *Directory {
	d := &Directory{
		params:     DefaultHashParams,
		principals: make(map[string]*record),
		live:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ── Credentials ──────────────────────────────────────────────────────

// Register creates a principal with no strikes.  It fails with
// ErrAlreadyExists when the nickname is taken.
func (d *Directory) Register(nickname, password string) (Principal, error) {
	if d.exists(nickname) {
		return Principal{}, cerrors.Newf(cerrors.AlreadyExists, "nickname %q is taken already", nickname)
	}

	// Hash outside the lock; the existence check is repeated below so
	// the insert stays an atomic check-and-set.
	hash, err := hashPassword(password, d.params)
	if err != nil {
		return Principal{}, fmt.Errorf("hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.principals[nickname]; ok {
		return Principal{}, cerrors.Newf(cerrors.AlreadyExists, "nickname %q is taken already", nickname)
	}
	rec := &record{Principal: Principal{Nickname: nickname}, passwordHash: hash}
	d.principals[nickname] = rec
	return rec.Principal, nil
}

// Authenticate returns the principal for a matching nickname and
// password.  Unknown nicknames and wrong passwords both fail with
// ErrInvalidCredentials.
func (d *Directory) Authenticate(nickname, password string) (Principal, error) {
	d.mu.RLock()
	rec, ok := d.principals[nickname]
	var hash string
	if ok {
		hash = rec.passwordHash
	}
	d.mu.RUnlock()

	if !ok {
		return Principal{}, cerrors.ErrInvalidCredentials
	}
	match, err := comparePassword(password, hash)
	if err != nil || !match {
		return Principal{}, cerrors.ErrInvalidCredentials
	}

	p, _ := d.Lookup(nickname)
	return p, nil
}

// ── Queries ──────────────────────────────────────────────────────────

// Lookup returns a copy of the named principal.
func (d *Directory) Lookup(nickname string) (Principal, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.principals[nickname]
	if !ok {
		return Principal{}, false
	}
	return rec.Principal, true
}

// IsBanned reports whether the named principal is currently banned.
func (d *Directory) IsBanned(nickname string) bool {
	p, ok := d.Lookup(nickname)
	return ok && p.Banned
}

// Len returns the number of registered principals.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.principals)
}

func (d *Directory) exists(nickname string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.principals[nickname]
	return ok
}

// ── Live sessions ────────────────────────────────────────────────────

// NoteSessionStart records one more live session for nickname and
// returns the new count.
func (d *Directory) NoteSessionStart(nickname string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live[nickname]++
	return d.live[nickname]
}

// NoteSessionEnd records that a session of nickname ended.  When the
// count reaches zero the principal is offline; its record is kept.
func (d *Directory) NoteSessionEnd(nickname string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.live[nickname] - 1
	if n <= 0 {
		delete(d.live, nickname)
		return 0
	}
	d.live[nickname] = n
	return n
}

// IsOnline reports whether nickname has at least one live session.
func (d *Directory) IsOnline(nickname string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.live[nickname] > 0
}

// Online returns the sorted nicknames that have live sessions.
func (d *Directory) Online() []string {
	d.mu.RLock()
	names := lo.Keys(d.live)
	d.mu.RUnlock()
	sort.Strings(names)
	return names
}

// ── Moderation state ─────────────────────────────────────────────────

// Strike adds one strike against nickname on behalf of striker.
// Reaching threshold bans the principal until the given time in the
// same critical section.  A banned striker fails with ErrBanned; the
// target may fail with ErrUnknownUser or ErrAlreadyBanned.
func (d *Directory) Strike(striker, nickname string, threshold int, until time.Time) (Principal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if by, ok := d.principals[striker]; ok && by.Banned {
		return Principal{}, cerrors.ErrBanned
	}
	rec, ok := d.principals[nickname]
	if !ok {
		return Principal{}, cerrors.Newf(cerrors.UnknownUser, "there is no user %q", nickname)
	}
	if rec.Banned {
		return Principal{}, cerrors.Newf(cerrors.AlreadyBanned, "user %q is already banned", nickname)
	}

	rec.Strikes++
	if rec.Strikes >= threshold {
		rec.Banned = true
		rec.BannedUntil = until
	}
	return rec.Principal, nil
}

// Lift clears the ban and resets the strike count.  It returns false
// when nickname is unknown or was not banned.
func (d *Directory) Lift(nickname string) (Principal, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.principals[nickname]
	if !ok || !rec.Banned {
		return Principal{}, false
	}
	rec.Banned = false
	rec.BannedUntil = time.Time{}
	rec.Strikes = 0
	return rec.Principal, true
}
