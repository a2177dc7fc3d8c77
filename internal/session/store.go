package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dexview_sessions_active",
	Help: "Number of viewer sessions held in memory",
})

// DefaultIdleTimeout is how long an untouched session is kept.
const DefaultIdleTimeout = 30 * time.Minute

// Store holds sessions in memory. Nothing is persisted.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// NewStore creates a store that drops sessions idle for longer than idleTimeout.
func NewStore(idleTimeout time.Duration) *Store {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Store{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
		logger:      log.With().Str("component", "session-store").Logger(),
	}
}

// Get returns the session with the given id and marks it as used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()

	if ok {
		s.touch(st.now())
	}
	return s, ok
}

// Create starts a new session with a random id.
func (st *Store) Create() *Session {
	now := st.now()
	s := newSession(uuid.NewString(), now)

	st.mu.Lock()
	st.pruneLocked(now)
	st.sessions[s.ID] = s
	sessionsActive.Set(float64(len(st.sessions)))
	st.mu.Unlock()

	st.logger.Debug().Str("session_id", s.ID).Msg("Session created")
	return s
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
func (st *Store) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}
	return st.Create(), true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) pruneLocked(now time.Time) {
	for id, s := range st.sessions {
		if now.Sub(s.idleSince()) > st.idleTimeout {
			delete(st.sessions, id)
			st.logger.Debug().Str("session_id", id).Msg("Session expired")
		}
	}
}
