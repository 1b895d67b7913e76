package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lox/uno-cli/internal/game"
)

// DefaultRedisKey is used when no key is configured.
const DefaultRedisKey = "uno:save"

// RedisStore keeps the snapshot under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// DialRedis connects to addr and checks the server answers.
func DialRedis(ctx context.Context, addr, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return NewRedisStore(client, key), nil
}

func (r *RedisStore) Save(ctx context.Context, snap game.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("saving to redis key %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context) (game.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Snapshot{}, ErrNoSave
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("loading redis key %s: %w", r.key, err)
	}
	return Decode(data)
}

// Close releases the client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
