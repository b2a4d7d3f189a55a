// Package redisstore shares invite codes between instances through Redis.
package redisstore

import (
	"context"
	"errors"
	"time"

	"relatescore-be/pkg/flow"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "relatescore:invite:"

// revokeScript deletes a code only while it still belongs to the caller.
var revokeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type InviteRegistry struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewInviteRegistry(rdb *redis.Client, ttl time.Duration) *InviteRegistry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InviteRegistry{rdb: rdb, ttl: ttl}
}

func key(code string) string {
	return keyPrefix + code
}

func (r *InviteRegistry) Issue(ctx context.Context, code, sessionID string) error {
	ok, err := r.rdb.SetNX(ctx, key(code), sessionID, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return flow.ErrInviteCodeTaken
	}
	return nil
}

func (r *InviteRegistry) Claim(ctx context.Context, code, _ string) (string, bool, error) {
	issuer, err := r.rdb.GetDel(ctx, key(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return issuer, true, nil
}

func (r *InviteRegistry) Revoke(ctx context.Context, code, sessionID string) error {
	err := revokeScript.Run(ctx, r.rdb, []string{key(code)}, sessionID).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (r *InviteRegistry) Owner(ctx context.Context, code string) (string, bool, error) {
	owner, err := r.rdb.Get(ctx, key(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}

func (r *InviteRegistry) Any(ctx context.Context) (bool, error) {
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return false, err
		}
		if len(keys) > 0 {
			return true, nil
		}
		if next == 0 {
			return false, nil
		}
		cursor = next
	}
}
