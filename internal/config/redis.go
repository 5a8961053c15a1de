package config

import (
	"context"
	"crypto/tls"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the client shared by the response cache and the
// rate limiter. REDIS_URL takes precedence (redis:// or rediss:// form);
// otherwise the address is assembled from REDIS_HOST/REDIS_PORT or
// REDIS_ADDR with optional REDIS_PASSWORD, REDIS_DB and REDIS_TLS. A nil
// return means Redis is unreachable and both consumers degrade: caching is
// skipped and rate limiting falls back to the in-process limiter.
func NewRedisClient() *redis.Client {
	client := redis.NewClient(redisOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

func redisOptions() *redis.Options {
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		if opts, err := redis.ParseURL(raw); err == nil {
			return opts
		}
	}

	addr := envStr("REDIS_ADDR", "")
	if host := os.Getenv("REDIS_HOST"); host != "" {
		addr = net.JoinHostPort(host, envStr("REDIS_PORT", "6379"))
	}
	if addr == "" {
		addr = "localhost:6379"
	}

	opts := &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
	}
	if envBool("REDIS_TLS", false) {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}
