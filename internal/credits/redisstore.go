package credits

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "luxelens:credits"

// RedisStore persists the balance under a single Redis key. Suited to
// deployments where several studio instances share one balance.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore wires a store against the given client; key may be empty.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	key = strings.TrimSpace(key)
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (int, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("credits: redis get: %w", err)
	}
	remaining, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false, fmt.Errorf("credits: decode redis balance %q: %w", raw, err)
	}
	return remaining, true, nil
}

func (s *RedisStore) Save(ctx context.Context, remaining int) error {
	if err := s.client.Set(ctx, s.key, strconv.Itoa(remaining), 0).Err(); err != nil {
		return fmt.Errorf("credits: redis set: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
