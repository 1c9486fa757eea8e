package draft

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps drafts in Redis, keyed draft:{userID}. Useful when the
// server itself is ephemeral and the draft must survive its restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a RedisStore against the given server.
func NewRedis(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func draftKey(userID int) string {
	return fmt.Sprintf("draft:%d", userID)
}

// Get returns the stored draft blob, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, userID int) ([]byte, error) {
	blob, err := s.client.Get(ctx, draftKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}
	return blob, nil
}

// Put stores the draft blob, replacing any previous value. Drafts never
// expire: an abandoned session is still recoverable weeks later.
func (s *RedisStore) Put(ctx context.Context, userID int, blob []byte) error {
	if err := s.client.Set(ctx, draftKey(userID), blob, 0).Err(); err != nil {
		return fmt.Errorf("writing draft: %w", err)
	}
	return nil
}

// Delete removes the stored draft.
func (s *RedisStore) Delete(ctx context.Context, userID int) error {
	if err := s.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
