package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"school-portal/internal/model"
)

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// DialRedis creates a client and pings it before handing it out.
func DialRedis(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func (r *Redis) Set(ctx context.Context, scope string, token string) error {
	if strings.TrimSpace(scope) == "" {
		return model.ErrNoSession
	}

	// No TTL: expiry is discovered when the API answers 401.
	if err := r.client.Set(ctx, scopedKey(scope), token, 0).Err(); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, scope string) (string, error) {
	token, err := r.client.Get(ctx, scopedKey(scope)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && token == "") {
		return "", model.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (r *Redis) Clear(ctx context.Context, scope string) error {
	if err := r.client.Del(ctx, scopedKey(scope)).Err(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
