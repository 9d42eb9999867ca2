package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"activityScope/internal/model"
)

// Redis is a shared Cache backed by a Redis instance.
type Redis struct {
	client *goredis.Client
}

func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func redisKey(network, contractID string) string {
	return fmt.Sprintf("tokenmeta:%s:%s", network, contractID)
}

func (r *Redis) Get(ctx context.Context, network, contractID string) (*model.TokenMeta, error) {
	raw, err := r.client.Get(ctx, redisKey(network, contractID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var meta model.TokenMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse cached token meta: %w", err)
	}
	return &meta, nil
}

func (r *Redis) Set(ctx context.Context, network, contractID string, meta model.TokenMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal token meta: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(network, contractID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
