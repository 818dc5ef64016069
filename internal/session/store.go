package session

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by Get when a user identity was never registered.
var ErrNotFound = errors.New("session not found")

// Store keys sessions by user identity. Sessions are process-lifetime state
// with a TTL sweep so abandoned entries do not accumulate forever.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl  time.Duration
	log  *logrus.Logger
	done chan struct{}
	once sync.Once
}

// NewStore creates a store sweeping idle sessions every sweepInterval. A
// non-positive ttl or sweepInterval disables eviction.
func NewStore(ttl, sweepInterval time.Duration, log *logrus.Logger) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      log,
		done:     make(chan struct{}),
	}
	if ttl > 0 && sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	}
	return s
}

// Ensure returns the user's session, creating a default one if absent.
// Idempotent: repeated calls return the same entry.
func (s *Store) Ensure(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[userID]; ok {
		return existing
	}
	sess := newSession(userID)
	s.sessions[userID] = sess
	return sess
}

// Get returns the user's session or ErrNotFound if the identity was never
// registered.
func (s *Store) Get(userID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the sweep loop.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now().Add(-s.ttl))
		case <-s.done:
			return
		}
	}
}

func (s *Store) sweep(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, sess := range s.sessions {
		if sess.idleSince(cutoff) {
			delete(s.sessions, userID)
			s.log.WithField("userId", userID).Info("evicted idle session")
		}
	}
}
