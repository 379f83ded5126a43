package memory

import (
	"context"
	"sync"
	"time"

	"smart-grocery-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// tombstoneFactor sets how long an expired session is still reported as
// expired rather than unknown, as a multiple of the session TTL.
const tombstoneFactor = 24

// SessionRepository keeps sessions in process memory with an inactivity TTL.
type SessionRepository struct {
	sessions *cache.Cache
	seen     *cache.Cache

	mu     sync.Mutex
	byUser map[string]map[string]struct{}
}

var _ store.SessionStore = (*SessionRepository)(nil)

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	cleanup := ttl / 6
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &SessionRepository{
		sessions: cache.New(ttl, cleanup),
		seen:     cache.New(ttl*tombstoneFactor, cleanup*tombstoneFactor),
		byUser:   make(map[string]map[string]struct{}),
	}
}

func (r *SessionRepository) Put(_ context.Context, session *store.Session) error {
	r.sessions.Set(session.ID, session.Clone(), cache.DefaultExpiration)
	r.seen.Set(session.ID, session.UserID, cache.DefaultExpiration)

	r.mu.Lock()
	defer r.mu.Unlock()
	ids, ok := r.byUser[session.UserID]
	if !ok {
		ids = make(map[string]struct{})
		r.byUser[session.UserID] = ids
	}
	ids[session.ID] = struct{}{}
	return nil
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (*store.Session, error) {
	if x, found := r.sessions.Get(sessionID); found {
		return x.(*store.Session).Clone(), nil
	}
	if _, found := r.seen.Get(sessionID); found {
		return nil, store.ErrSessionExpired
	}
	return nil, store.ErrSessionNotFound
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	x, found := r.seen.Get(sessionID)
	if !found {
		return store.ErrSessionNotFound
	}
	r.sessions.Delete(sessionID)
	r.seen.Delete(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if ids, ok := r.byUser[x.(string)]; ok {
		delete(ids, sessionID)
		if len(ids) == 0 {
			delete(r.byUser, x.(string))
		}
	}
	return nil
}

// ListByUser returns the user's live sessions and forgets expired ones.
func (r *SessionRepository) ListByUser(_ context.Context, userID string) ([]*store.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*store.Session
	for id := range r.byUser[userID] {
		x, found := r.sessions.Get(id)
		if !found {
			delete(r.byUser[userID], id)
			continue
		}
		out = append(out, x.(*store.Session).Clone())
	}
	if len(r.byUser[userID]) == 0 {
		delete(r.byUser, userID)
	}
	return out, nil
}
