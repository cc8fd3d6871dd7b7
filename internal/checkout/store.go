package checkout

import (
	"sync"
	"time"

	"github.com/talgatbekov/bazarline-backend/pkg/errors"
)

// Store holds live checkout sessions, one per shopper. Sessions are
// process-local: durable order state lives behind the order API, so losing
// a session on restart only sends the shopper back to their cart.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Get returns a copy of the shopper's live session.
func (s *Store) Get(userID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.live(userID)
	if session == nil {
		return Session{}, false
	}
	return *session, true
}

// Put installs a fresh session, replacing any existing one.
func (s *Store) Put(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.UpdatedAt = s.now()
	s.sessions[session.UserID] = &session
}

// Update mutates the shopper's session under the store lock and returns the
// resulting copy. The callback must not block.
func (s *Store) Update(userID string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.live(userID)
	if session == nil {
		return Session{}, errors.New(errors.CodeNotFound, "no active checkout session")
	}
	if err := fn(session); err != nil {
		return Session{}, err
	}
	session.UpdatedAt = s.now()
	return *session, nil
}

// Delete discards the shopper's session.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// BeginSubmission flips the single-flight marker. It reports false when a
// submission is already in flight, in which case the caller drops the
// duplicate trigger.
func (s *Store) BeginSubmission(userID string) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.live(userID)
	if session == nil {
		return Session{}, false, errors.New(errors.CodeNotFound, "no active checkout session")
	}
	if session.submitting {
		return *session, false, nil
	}
	session.submitting = true
	return *session, true, nil
}

// EndSubmission clears the single-flight marker so the shopper can retry.
func (s *Store) EndSubmission(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session := s.sessions[userID]; session != nil {
		session.submitting = false
	}
}

// live returns the session if present and not expired; expired sessions are
// pruned on access. Callers hold the lock.
func (s *Store) live(userID string) *Session {
	session, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	if s.ttl > 0 && s.now().Sub(session.UpdatedAt) > s.ttl {
		delete(s.sessions, userID)
		return nil
	}
	return session
}
