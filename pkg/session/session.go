// Package session keeps one calcium engine per user session inside the
// daemon. Engines are not safe for concurrent use, so every call into one goes
// through its Session, which serializes them.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/corrcal/pkg/calcium"
)

type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	updatedAt time.Time
	engine    *calcium.Engine
}

// Summary is the JSON view of a session.
type Summary struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	State     calcium.State `json:"state"`
}

func newSession(u calcium.Unit) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		updatedAt: now,
		engine:    calcium.NewEngine(u),
	}
}

// Do runs fn with exclusive access to the engine and returns the state that
// results from it.
func (s *Session) Do(fn func(e *calcium.Engine)) calcium.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.engine)
	s.updatedAt = time.Now()
	return s.engine.State()
}

func (s *Session) State() calcium.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
		State:     s.engine.State(),
	}
}

// Store is a bounded set of sessions. When full, the least recently used
// session is dropped; a session untouched for longer than the TTL expires.
type Store struct {
	// mu orders TTL refreshes against removals, so a refresh never brings
	// back a session that is gone.
	mu     sync.Mutex
	cache  *expirable.LRU[string, *Session]
	logger logrus.FieldLogger
}

// NewStore creates a store holding at most maxSessions sessions that expire
// ttl after their last mutation. A zero ttl disables expiry.
func NewStore(maxSessions int, ttl time.Duration, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Store{logger: logger}
	s.cache = expirable.NewLRU[string, *Session](maxSessions, s.onEvict, ttl)
	return s
}

func (s *Store) onEvict(id string, sess *Session) {
	s.logger.WithFields(logrus.Fields{
		"session": id,
		"age":     time.Since(sess.CreatedAt).Round(time.Second).String(),
	}).Debug("session dropped")
}

// Create starts a new empty session using u for calcium.
func (s *Store) Create(u calcium.Unit) *Session {
	sess := newSession(u)
	s.mu.Lock()
	evicted := s.cache.Add(sess.ID, sess)
	s.mu.Unlock()
	if evicted {
		s.logger.Info("session limit reached, dropped the least recently used session")
	}
	s.logger.WithFields(logrus.Fields{
		"session": sess.ID,
		"unit":    u.String(),
	}).Debug("session created")
	return sess
}

func (s *Store) Get(id string) (*Session, bool) {
	return s.cache.Get(id)
}

// Update runs fn on the session's engine and restarts its TTL, unless the
// session was removed while fn ran.
func (s *Store) Update(id string, fn func(e *calcium.Engine)) (calcium.State, bool) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return calcium.State{}, false
	}
	st := sess.Do(fn)

	s.mu.Lock()
	if cur, ok := s.cache.Peek(id); ok && cur == sess {
		s.cache.Add(id, sess)
	}
	s.mu.Unlock()

	return st, true
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(id)
}

// List returns live sessions, oldest first.
func (s *Store) List() []*Session {
	sessions := s.cache.Values()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions
}

func (s *Store) Len() int {
	return s.cache.Len()
}
