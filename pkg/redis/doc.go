// Package redis connects to the Redis server used for distributed run locks.
//
// Config is read from REDIS_* environment variables. When REDIS_URL is empty
// the reindexer falls back to a local file lock and never calls Connect.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // errors.Is(err, redis.ErrRedisNotReady)
//	}
//	defer client.Close()
//
// Healthcheck returns a check for the readiness endpoint.
package redis
