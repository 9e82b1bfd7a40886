package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "assessment:session:"
	defaultRedisTTL  = 2 * time.Hour
)

// RedisStore keeps sessions as JSON values whose TTL is refreshed on every
// read and write, so idle sessions expire on their own.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	key := sessionKey(id)
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var s Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}

	// A failed refresh only shortens the session's life.
	_ = r.client.Expire(ctx, key, r.ttl).Err()
	return &s, nil
}

// Put uses WATCH/MULTI/EXEC so a replica holding a stale copy cannot
// overwrite a newer turn.
func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	key := sessionKey(s.ID)
	expected := s.Version

	next := *s
	next.Version = expected + 1
	val, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var stored struct {
				Version int64 `json:"version"`
			}
			if err := json.Unmarshal(current, &stored); err != nil {
				return err
			}
			if stored.Version != expected {
				return ErrVersionConflict
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, r.ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		err = ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("put session %s: %w", s.ID, err)
	}

	s.Version = next.Version
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
