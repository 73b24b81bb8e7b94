package session_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/desktop-login/session"
	"github.com/stretchr/testify/require"
)

func TestStore_TakeAndClear(t *testing.T) {
	s := session.NewStore()

	_, ok := s.TakeAndClear()
	require.False(t, ok, "empty store")

	s.Put(session.PendingAuth{ID: "a", CSRFToken: "state-a", CodeVerifier: "verifier-a"})
	require.True(t, s.Pending())

	p, ok := s.TakeAndClear()
	require.True(t, ok)
	require.Equal(t, "state-a", p.CSRFToken)
	require.Equal(t, "verifier-a", p.CodeVerifier)
	require.False(t, p.CreatedAt.IsZero())

	_, ok = s.TakeAndClear()
	require.False(t, ok, "second take must find nothing")
	require.False(t, s.Pending())
}

func TestStore_LastPutWins(t *testing.T) {
	s := session.NewStore()
	s.Put(session.PendingAuth{CSRFToken: "first"})
	s.Put(session.PendingAuth{CSRFToken: "second"})

	p, ok := s.TakeAndClear()
	require.True(t, ok)
	require.Equal(t, "second", p.CSRFToken)

	_, ok = s.TakeAndClear()
	require.False(t, ok)
}

func TestStore_TTL(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := session.NewStore(
		session.WithTTL(time.Minute),
		session.WithClock(func() time.Time { return now }),
	)

	s.Put(session.PendingAuth{CSRFToken: "fresh"})
	now = now.Add(30 * time.Second)
	p, ok := s.TakeAndClear()
	require.True(t, ok)
	require.Equal(t, "fresh", p.CSRFToken)

	s.Put(session.PendingAuth{CSRFToken: "stale"})
	now = now.Add(2 * time.Minute)
	require.False(t, s.Pending())
	_, ok = s.TakeAndClear()
	require.False(t, ok, "expired attempt must not be redeemable")
}

func TestStore_ConcurrentTake(t *testing.T) {
	s := session.NewStore()
	s.Put(session.PendingAuth{CSRFToken: "only-once"})

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.TakeAndClear(); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, winners.Load())
}
