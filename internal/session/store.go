// Package session keeps each visitor's capture forms between page loads.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zma-auto/taxi-landing/internal/capture"
)

// CookieName carries the visitor session id.
const CookieName = "zma_session"

// Factory builds a fresh form set for a new visitor.
type Factory func() *capture.Set

// Store is an in-memory visitor registry with an idle TTL.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	factory  Factory
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	forms    *capture.Set
	lastSeen time.Time
}

// NewStore creates a store expiring sessions idle for longer than ttl.
func NewStore(factory Factory, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		sessions: make(map[string]*entry),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Resolve returns the forms for id, starting a new session when id is unknown
// or expired. The returned id is the one the caller should keep.
func (s *Store) Resolve(id string) (string, *capture.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.sessions[id]; ok && now.Sub(e.lastSeen) <= s.ttl {
		e.lastSeen = now
		return id, e.forms
	}

	id = uuid.NewString()
	e := &entry{forms: s.factory(), lastSeen: now}
	s.sessions[id] = e
	return id, e.forms
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
