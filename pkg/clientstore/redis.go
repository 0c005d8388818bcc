package clientstore

import (
	"context"
	"time"
)

type redisBackend interface {
	ClientKey(sessionID, sellerSlug, name string) string
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Redis stores client records in redis under the client namespace.
type Redis struct {
	backend redisBackend
}

func NewRedis(backend redisBackend) *Redis {
	return &Redis{backend: backend}
}

func (r *Redis) Key(scope Scope, name string) string {
	return r.backend.ClientKey(scope.SessionID, scope.SellerSlug, name)
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	return r.backend.Lookup(ctx, key)
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.backend.Set(ctx, key, value, ttl)
}

func (r *Redis) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.backend.SetNX(ctx, key, value, ttl)
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.backend.Del(ctx, keys...)
}
