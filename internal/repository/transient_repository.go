package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio_gallery/internal/storage"
	redisapp "portfolio_gallery/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

// RedisTransientRepo транзиентные записи в Redis, срок жизни задаётся при Set.
type RedisTransientRepo struct {
	Client *redisapp.Client
}

func NewRedisTransientRepo(client *redisapp.Client) *RedisTransientRepo {
	return &RedisTransientRepo{Client: client}
}

func (r *RedisTransientRepo) GetTransient(ctx context.Context, key string) ([]byte, error) {
	const op = "repository.RedisTransientRepo.GetTransient"

	val, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return val, nil
}

func (r *RedisTransientRepo) SetTransient(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const op = "repository.RedisTransientRepo.SetTransient"

	if err := r.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisTransientRepo) DeleteTransient(ctx context.Context, key string) error {
	const op = "repository.RedisTransientRepo.DeleteTransient"

	if err := r.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
