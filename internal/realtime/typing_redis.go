package realtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisTypingStore backs the typing indicator with redis keys that carry
// the typing window as their TTL, so expiry and eviction are the same
// operation.
type RedisTypingStore struct {
	rdb *redis.Client
}

func NewRedisTypingStore(rdb *redis.Client) *RedisTypingStore {
	return &RedisTypingStore{rdb: rdb}
}

func typingRedisKey(sender, recipient string) string {
	return "typing:" + sender + ":" + recipient
}

func (s *RedisTypingStore) MarkTyping(ctx context.Context, sender, recipient string) error {
	if err := s.rdb.Set(ctx, typingRedisKey(sender, recipient), "1", TypingWindow).Err(); err != nil {
		return fmt.Errorf("mark typing: %w", err)
	}
	return nil
}

func (s *RedisTypingStore) IsTyping(ctx context.Context, sender, recipient string) (bool, error) {
	err := s.rdb.Get(ctx, typingRedisKey(sender, recipient)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("check typing: %w", err)
	}
	return true, nil
}
