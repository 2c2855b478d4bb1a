package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/quickcalc/quickcalc/pkg/calc"
	"github.com/quickcalc/quickcalc/pkg/types"
)

// Session is one client's calculator. Every transition runs under the
// session lock, so inputs from concurrent HTTP requests and WebSocket frames
// are applied one at a time and in full.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	calc     *calc.Calculator
	lastUsed time.Time
}

// Apply runs one input against the calculator and returns the resulting
// view. A calculator error leaves the view unchanged and is returned as is.
func (s *Session) Apply(in calc.Input, now time.Time) (types.CalculatorView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = now
	err := s.calc.Apply(in)
	return s.calc.Snapshot(), err
}

// View returns the current calculator view.
func (s *Session) View() types.CalculatorView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calc.Snapshot()
}

// LastUsed returns when the session last received an input.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// Store is a thread-safe in-memory session store, keyed by session id.
// A background goroutine (Run) periodically evicts sessions that have not
// been used within the configured TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Session
	ttl  time.Duration
	opts calc.Options
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store whose sessions expire after ttl of inactivity and whose
// calculators are built with opts.
func New(ttl time.Duration, opts calc.Options) *Store {
	return &Store{
		data: make(map[string]*Session),
		ttl:  ttl,
		opts: opts,
		now:  time.Now,
	}
}

// TTL returns the idle lifetime of a session.
func (s *Store) TTL() time.Duration { return s.ttl }

// Now returns the store's clock reading.
func (s *Store) Now() time.Time { return s.now() }

// Create starts a new session with a fresh calculator.
func (s *Store) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:        newID(),
		CreatedAt: now,
		calc:      calc.New(s.opts),
		lastUsed:  now,
	}
	s.mu.Lock()
	s.data[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the live session with the given id and marks it used. Sessions
// idle for longer than the TTL but not yet evicted are reported missing.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := s.now()
	if !sess.LastUsed().After(now.Add(-s.ttl)) {
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

// Delete removes the session with the given id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[id]
	delete(s.data, id)
	return ok
}

// List returns all sessions used within the TTL.
func (s *Store) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]*Session, 0, len(s.data))
	for _, sess := range s.data {
		if sess.LastUsed().After(cutoff) {
			out = append(out, sess)
		}
	}
	return out
}

// Count returns the total number of sessions currently held, including idle ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes sessions whose last use is older than now minus TTL.
// It returns the ids of the sessions removed.
func (s *Store) Evict(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	var removed []string
	for id, sess := range s.data {
		if !sess.LastUsed().After(cutoff) {
			delete(s.data, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Run starts the background eviction loop. It ticks at half the TTL interval
// (minimum 1 second) and calls onEvict, if non-nil, with each evicted id.
// Run blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context, onEvict func(id string)) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			removed := s.Evict(now)
			if len(removed) > 0 {
				slog.Debug("store: evicted idle sessions", "count", len(removed))
			}
			if onEvict != nil {
				for _, id := range removed {
					onEvict(id)
				}
			}
		}
	}
}

// newID returns a random 128-bit hex session id.
func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic("store: read random id: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
