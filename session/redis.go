package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisSessionPrefix = "journal:session:"
	redisEmailPrefix   = "journal:session_email:"
)

// RedisStore keeps sessions in Redis so multiple server replicas share one
// session space. Each session lives under journal:session:<token> with a
// key TTL matching the session expiry, so Redis drops stale entries on its
// own and PurgeExpired has nothing to do. A per-email set under
// journal:session_email:<email> backs GetByEmail.
type RedisStore struct {
	rdb redis.UniversalClient
	now func() time.Time
}

// NewRedisStore wraps an existing Redis client. The client's lifecycle
// stays with the caller.
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

var _ Store = (*RedisStore)(nil)

// Put stores the session with a TTL matching its remaining lifetime.
// A session already expired at write time is not stored at all.
func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: encode for redis: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, redisSessionPrefix+s.Token, raw, ttl)
	emailKey := redisEmailPrefix + s.Email
	pipe.SAdd(ctx, emailKey, s.Token)
	// The index set must outlive its longest-lived member; refreshing to
	// the new session's TTL is enough because members expire with their
	// own keys and GetByEmail skips dangling ones.
	pipe.Expire(ctx, emailKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: redis put: %w", err)
	}
	return nil
}

// GetByToken returns the session for the token, or nil when Redis has no
// key for it (including after TTL expiry).
func (r *RedisStore) GetByToken(ctx context.Context, token string) (*Session, error) {
	raw, err := r.rdb.Get(ctx, redisSessionPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("session: decode from redis: %w", err)
	}
	return &s, nil
}

// GetByEmail returns the email's freshest live session, pruning index
// members whose session keys have already expired.
func (r *RedisStore) GetByEmail(ctx context.Context, email string) (*Session, error) {
	emailKey := redisEmailPrefix + email
	tokens, err := r.rdb.SMembers(ctx, emailKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session: redis index read: %w", err)
	}
	var best *Session
	for _, token := range tokens {
		s, err := r.GetByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if s == nil {
			r.rdb.SRem(ctx, emailKey, token)
			continue
		}
		if best == nil || s.ExpiresAt.After(best.ExpiresAt) {
			best = s
		}
	}
	return best, nil
}

// Delete removes the session key and its index entry.
func (r *RedisStore) Delete(ctx context.Context, token string) (bool, error) {
	s, err := r.GetByToken(ctx, token)
	if err != nil {
		return false, err
	}
	if s == nil {
		return false, nil
	}
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, redisSessionPrefix+token)
	pipe.SRem(ctx, redisEmailPrefix+s.Email, token)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("session: redis delete: %w", err)
	}
	return true, nil
}

// PurgeExpired is a no-op for Redis; key TTLs already reap expired
// sessions server-side.
func (r *RedisStore) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

// Count scans for live session keys. SCAN is O(keys) but sessions number
// in the thousands at most, and Count only backs an admin statistic.
func (r *RedisStore) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, redisSessionPrefix+"*", 256).Result()
		if err != nil {
			return 0, fmt.Errorf("session: redis scan: %w", err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}
