package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

const (
	// DefaultSessionTurns is the per-user turn cap (K)
	DefaultSessionTurns = 10
	// DefaultSessionTTL is the idle lifetime of a session buffer
	DefaultSessionTTL = 30 * time.Minute
)

// SessionStore is the in-process session buffer. Each user owns a bounded
// ring of recent turns guarded by its own mutex: appends for one user are
// serialized while different users proceed in parallel. Idle sessions
// expire after the configured TTL.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[model.UserID]*userSession
	maxTurns int
	ttl      time.Duration
	now      func() time.Time
}

type userSession struct {
	mu        sync.Mutex
	turns     []model.SessionTurn
	expiresAt time.Time
}

var _ interfaces.SessionStore = &SessionStore{}

// SessionOption customizes the session store
type SessionOption func(*SessionStore)

// WithSessionClock injects a clock, used by TTL tests
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

// NewSessionStore creates a session store keeping at most maxTurns turns
// per user, expiring idle sessions after ttl
func NewSessionStore(maxTurns int, ttl time.Duration, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		sessions: make(map[model.UserID]*userSession),
		maxTurns: maxTurns,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) session(userID model.UserID) *userSession {
	s.mu.RLock()
	sess, exists := s.sessions[userID]
	s.mu.RUnlock()
	if exists {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, exists := s.sessions[userID]; exists {
		return sess
	}
	sess = &userSession{}
	s.sessions[userID] = sess
	return sess
}

// Append adds turns to the user's buffer, evicting the oldest turns when
// the buffer would exceed its bound. All turns of one call share the same
// user and are appended under a single lock acquisition, so concurrent
// exchanges never interleave.
func (s *SessionStore) Append(ctx context.Context, turns ...model.SessionTurn) error {
	if len(turns) == 0 {
		return nil
	}
	userID := turns[0].UserID
	if userID == "" {
		return goerr.Wrap(types.ErrInvalidInput, "session turn user ID is required")
	}
	for _, turn := range turns {
		if turn.UserID != userID {
			return goerr.Wrap(types.ErrInvalidInput, "all turns of one append must share a user")
		}
		if !turn.Role.IsValid() {
			return goerr.Wrap(types.ErrInvalidInput, "invalid session turn role",
				goerr.V("role", turn.Role))
		}
	}

	now := s.now()
	sess := s.session(userID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.expiresAt.IsZero() && now.After(sess.expiresAt) {
		sess.turns = nil
	}

	for _, turn := range turns {
		if turn.Timestamp.IsZero() {
			turn.Timestamp = now
		}
		sess.turns = append(sess.turns, turn)
	}
	if len(sess.turns) > s.maxTurns {
		evicted := len(sess.turns) - s.maxTurns
		sess.turns = append([]model.SessionTurn(nil), sess.turns[evicted:]...)
	}
	sess.expiresAt = now.Add(s.ttl)

	return nil
}

// Recent returns up to k most recent turns in chronological order
func (s *SessionStore) Recent(ctx context.Context, userID model.UserID, k int) ([]model.SessionTurn, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	sess, exists := s.sessions[userID]
	s.mu.RUnlock()
	if !exists {
		return nil, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.expiresAt.IsZero() && s.now().After(sess.expiresAt) {
		sess.turns = nil
		return nil, nil
	}

	start := 0
	if len(sess.turns) > k {
		start = len(sess.turns) - k
	}
	return append([]model.SessionTurn(nil), sess.turns[start:]...), nil
}

// Clear removes the user's session buffer
func (s *SessionStore) Clear(ctx context.Context, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}
