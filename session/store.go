package session

import (
	"sync"
	"time"
)

var _ Repo = (*Store)(nil)

// Store is a thread-safe, single-slot implementation of the Repo interface.
// A Put replaces any attempt still waiting for its callback.
type Store struct {
	mu      sync.Mutex
	pending *PendingAuth
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Store)

// WithTTL expires a pending attempt after ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores the attempt, discarding the previous one
func (s *Store) Put(pending PendingAuth) {
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &pending
}

// TakeAndClear moves the pending attempt out of the store.
// It reports false when nothing is pending or the attempt has expired.
func (s *Store) TakeAndClear() (PendingAuth, bool) {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.mu.Unlock()

	if p == nil || s.expired(p) {
		return PendingAuth{}, false
	}
	return *p, true
}

// Pending reports whether an unexpired attempt is waiting for its callback
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil && !s.expired(s.pending)
}

func (s *Store) expired(p *PendingAuth) bool {
	return s.ttl > 0 && s.now().Sub(p.CreatedAt) > s.ttl
}
