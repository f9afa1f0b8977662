package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims entries older than the window, then admits the request
// only when fewer than max remain. Members are random so two requests in the same
// millisecond both count.
var slidingWindow = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max    = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
if redis.call("ZCARD", key) >= max then
  return 0
end
redis.call("ZADD", key, now, member)
redis.call("PEXPIRE", key, window)
return 1
`)

// Redis keeps one sorted set per key, so every API replica sees the same
// history.
type Redis struct {
	rdb    redis.Scripter
	policy Policy
	prefix string
	now    func() time.Time
}

func NewRedis(rdb redis.Scripter, p Policy, now func() time.Time) *Redis {
	if now == nil {
		now = time.Now
	}
	return &Redis{rdb: rdb, policy: p.normalized(), prefix: "chat:ratelimit:", now: now}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	now := r.now()
	member := uuid.NewString()

	res, err := slidingWindow.Run(ctx, r.rdb,
		[]string{r.prefix + key},
		now.UnixMilli(), r.policy.Window.Milliseconds(), r.policy.Max, member,
	).Int()
	if err != nil {
		return false, fmt.Errorf("ratelimit: redis: %w", err)
	}
	return res == 1, nil
}
