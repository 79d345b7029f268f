package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// refreshScript extends the key only while it still holds our token.
const refreshScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0`

// RedisClient is the subset of go-redis used by RedisLocker.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// RedisLocker holds locks as SET NX PX keys with a random token.
// The key is refreshed in the background while the lock is held, so TTL
// only bounds how long a crashed holder blocks others.
type RedisLocker struct {
	client RedisClient
	ttl    time.Duration
	renew  time.Duration
	prefix string
}

// RedisOption configures a RedisLocker.
type RedisOption func(*RedisLocker)

// WithTTL sets how long a lock survives a crashed holder.
func WithTTL(ttl time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithRenewInterval sets how often a held lock is extended. It defaults to
// a third of the TTL.
func WithRenewInterval(d time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.renew = d
		}
	}
}

// WithKeyPrefix namespaces lock keys.
func WithKeyPrefix(prefix string) RedisOption {
	return func(l *RedisLocker) { l.prefix = prefix }
}

// NewRedis creates a RedisLocker with a two hour TTL and the "lock:" prefix.
func NewRedis(client RedisClient, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{client: client, ttl: 2 * time.Hour, prefix: "lock:"}
	for _, opt := range opts {
		opt(l)
	}
	if l.renew <= 0 || l.renew >= l.ttl {
		l.renew = l.ttl / 3
	}
	return l
}

// Lock sets key if absent and keeps extending it until the returned
// Release is called.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Release, error) {
	full := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, full, token, l.ttl).Result()
	if err != nil {
		return nil, errors.Join(ErrAcquire, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	renewCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.keepAlive(renewCtx, full, token)
	}()

	return func(ctx context.Context) error {
		stop()
		<-done

		n, err := l.client.Eval(ctx, releaseScript, []string{full}, token).Int64()
		if err != nil {
			return errors.Join(ErrRelease, err)
		}
		if n == 0 {
			return ErrLockExpired
		}
		return nil
	}, nil
}

// keepAlive extends the key until ctx ends or the token is gone. A failed
// refresh is retried on the next tick.
func (l *RedisLocker) keepAlive(ctx context.Context, key, token string) {
	ticker := time.NewTicker(l.renew)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := l.client.Eval(ctx, refreshScript, []string{key}, token, l.ttl.Milliseconds()).Int64()
			if err == nil && n == 0 {
				return
			}
		}
	}
}
