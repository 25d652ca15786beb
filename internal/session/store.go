package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vbonduro/fridgechef/internal/flow"
)

const (
	DefaultMaxSessions = 1000
	DefaultTTL         = 30 * time.Minute
)

// Store keeps live sessions in memory. The least recently used session is
// dropped once the store is full, and any session idle for longer than the
// TTL expires.
type Store struct {
	// mu makes the read-then-refresh in Get atomic with respect to Delete.
	mu            sync.Mutex
	sessions      *expirable.LRU[string, *flow.Controller]
	newController func() *flow.Controller
	logger        *slog.Logger
}

func NewStore(maxSessions int, ttl time.Duration, newController func() *flow.Controller, logger *slog.Logger) *Store {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{newController: newController, logger: logger}
	s.sessions = expirable.NewLRU(maxSessions, s.onEvict, ttl)
	return s
}

func (s *Store) onEvict(id string, c *flow.Controller) {
	s.logger.Info("session removed", "session_id", id, "stage", c.State().Stage)
}

// Create starts a new session in the capturing stage.
func (s *Store) Create() (string, *flow.Controller) {
	id := uuid.NewString()
	c := s.newController()
	s.mu.Lock()
	s.sessions.Add(id, c)
	s.mu.Unlock()
	s.logger.Info("session created", "session_id", id, "sessions", s.sessions.Len())
	return id, c
}

// Get returns the session and restarts its idle timer.
func (s *Store) Get(id string) (*flow.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s.sessions.Add(id, c)
	return c, true
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Remove(id)
}

func (s *Store) Len() int {
	return s.sessions.Len()
}
