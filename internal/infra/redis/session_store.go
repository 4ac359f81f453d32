package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"learning-exam-service/internal/app"
)

// sessionGrace keeps a marker alive past its assessment's time limit until the timer
// settles and deletes it.
const sessionGrace = time.Minute

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions (and their timers) live in this process; the local map holds them.
//   - Redis carries a liveness marker per session with the learner and assessment, so
//     other instances and operators can see who is mid-exam.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	// best-effort liveness marker
	ctx := context.Background()
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(session.ID()),
		"learner", session.Learner().ID,
		"assessment", session.Assessment().ID,
		"started", session.CreatedAt().UTC().Format(time.RFC3339),
	)
	if ttl := s.markerTTL(session); ttl > 0 {
		pipe.Expire(ctx, s.key(session.ID()), ttl)
	}
	_, _ = pipe.Exec(ctx)
}

// markerTTL is the configured ttl, stretched to outlive a timed assessment.
func (s *SessionStore) markerTTL(session *app.Session) time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	limit := time.Duration(session.Assessment().TimeLimitSeconds)*time.Second + sessionGrace
	if session.Assessment().TimeLimitSeconds > 0 && limit > s.ttl {
		return limit
	}
	return s.ttl
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "exam:session:" + sessionID
}
