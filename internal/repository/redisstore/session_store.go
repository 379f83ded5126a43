// Package redisstore keeps conversation sessions in Redis so several API
// instances can serve the same conversation. Turns on one session are
// serialized across instances by a token-owned lock key.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smart-grocery-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix       = "grocery:"
	tombstoneFactor = 24
)

type SessionStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

var (
	_ store.SessionStore  = (*SessionStore)(nil)
	_ store.SessionLocker = (*SessionStore)(nil)
)

type Option func(*SessionStore)

// WithLockTTL bounds how long a crashed holder keeps a session locked. It
// must outlast the turn timeout.
func WithLockTTL(d time.Duration) Option {
	return func(s *SessionStore) {
		if d > 0 {
			s.lockTTL = d
		}
	}
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration, opts ...Option) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &SessionStore{rdb: rdb, ttl: ttl, lockTTL: defaultLockTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sessionKey(id string) string { return keyPrefix + "session:" + id }
func seenKey(id string) string    { return keyPrefix + "session_seen:" + id }
func userKey(userID string) string {
	return keyPrefix + "user_sessions:" + userID
}

// Put stores the session and refreshes its inactivity TTL.
func (s *SessionStore) Put(ctx context.Context, session *store.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), data, s.ttl)
		pipe.Set(ctx, seenKey(session.ID), session.UserID, s.ttl*tombstoneFactor)
		pipe.ZAdd(ctx, userKey(session.UserID), redis.Z{
			Score:  float64(session.LastUpdatedAt.UnixMilli()),
			Member: session.ID,
		})
		pipe.Expire(ctx, userKey(session.UserID), s.ttl*tombstoneFactor)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*store.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		seen, serr := s.rdb.Exists(ctx, seenKey(sessionID)).Result()
		if serr != nil {
			return nil, fmt.Errorf("check session: %w", serr)
		}
		if seen > 0 {
			return nil, store.ErrSessionExpired
		}
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session store.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	userID, err := s.rdb.Get(ctx, seenKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return store.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(sessionID), seenKey(sessionID))
		pipe.ZRem(ctx, userKey(userID), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListByUser returns the user's live sessions, oldest first, and prunes
// expired ones from the index.
func (s *SessionStore) ListByUser(ctx context.Context, userID string) ([]*store.Session, error) {
	ids, err := s.rdb.ZRange(ctx, userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	var out []*store.Session
	var stale []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var session store.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", ids[i], err)
		}
		out = append(out, &session)
	}
	if len(stale) > 0 {
		if err := s.rdb.ZRem(ctx, userKey(userID), stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune sessions: %w", err)
		}
	}
	return out, nil
}
