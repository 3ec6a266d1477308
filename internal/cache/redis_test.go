//go:build integration
// +build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func dialTestRedis(t *testing.T, ttl time.Duration) *Redis {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	if opts, err := redis.ParseURL(addr); err == nil {
		addr = opts.Addr
	}

	c, err := DialRedis(context.Background(), addr, ttl)
	if err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisGetSet(t *testing.T) {
	ctx := context.Background()
	c := dialTestRedis(t, time.Minute)

	key := Key([]byte("redis-test"), []byte(time.Now().String()))
	t.Cleanup(func() { c.rdb.Del(ctx, c.prefix+key) })

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get() before Set = %v, %v; want miss", ok, err)
	}

	if err := c.Set(ctx, key, []byte(`{"nodes":[]}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want hit", ok, err)
	}
	if string(got) != `{"nodes":[]}` {
		t.Errorf("Get() = %s", got)
	}

	ttl, err := c.rdb.TTL(ctx, c.prefix+key).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want (0, 1m]", ttl)
	}
}

func TestRedisDefaultTTL(t *testing.T) {
	c := dialTestRedis(t, 0)
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}

func TestDialRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := DialRedis(ctx, "127.0.0.1:1", time.Minute); err == nil {
		t.Error("expected error dialing a closed port")
	}
}
