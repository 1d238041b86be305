package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techzonevn/storefront-backend/pkg/config"
)

// fakeStore is a single-threaded in-memory stand-in for go-redis.
type fakeStore struct {
	values  map[string]string
	ttls    map[string]time.Duration
	expires int
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Ping(context.Context) *redis.StatusCmd { return redis.NewStatusResult("PONG", nil) }

func (f *fakeStore) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeStore) GetDel(ctx context.Context, key string) *redis.StringCmd {
	cmd := f.Get(ctx, key)
	delete(f.values, key)
	delete(f.ttls, key)
	return cmd
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.Set(ctx, key, value, ttl)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Incr(_ context.Context, key string) *redis.IntCmd {
	var n int64
	fmt.Sscan(f.values[key], &n)
	n++
	f.values[key] = fmt.Sprint(n)
	return redis.NewIntResult(n, nil)
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires++
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) TTL(_ context.Context, key string) *redis.DurationCmd {
	if _, ok := f.values[key]; !ok {
		return redis.NewDurationResult(-2, nil)
	}
	if ttl, ok := f.ttls[key]; ok && ttl > 0 {
		return redis.NewDurationResult(ttl, nil)
	}
	return redis.NewDurationResult(-1, nil)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.values, k)
		delete(f.ttls, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestFixedWindowAllowCountsAndExpires(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	c := &Client{store: fake}

	for i, want := range []bool{true, true, false} {
		ok, n, err := c.FixedWindowAllow(ctx, "login:ip:10.0.0.1", 2, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "attempt %d", i+1)
		assert.Equal(t, int64(i+1), n)
	}
	assert.Equal(t, 1, fake.expires, "ttl set once while it is still armed")
	assert.Equal(t, time.Minute, fake.ttls["sf:rate_limit:login:ip:10.0.0.1"])
}

func TestIncrWithTTLRearmsLostExpiry(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	fake.values["counter"] = "4"
	c := &Client{store: fake}

	n, err := c.IncrWithTTL(ctx, "counter", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, 30*time.Second, fake.ttls["counter"])
}

func TestCacheRoundTripMissAndGetDel(t *testing.T) {
	ctx := context.Background()
	c := &Client{store: newFakeStore()}
	key := c.CacheKey("chatbot_products", "0", "iphone", "5")

	_, err := c.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrCacheMiss))

	require.NoError(t, c.Set(ctx, key, `[{"name":"iPhone 15"}]`, time.Minute))
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"iPhone 15"}]`, got)

	got, err = c.GetDel(ctx, key)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	_, err = c.GetDel(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss, "a value can only be consumed once")

	require.NoError(t, c.Del(ctx))
}

func TestKeyBuilders(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "sf:idempotency:orders:abc", c.IdempotencyKey("orders", "abc"))
	assert.Equal(t, "sf:rate_limit:login", c.RateLimitKey("login"))
	assert.Equal(t, "sf:session:access:jti-1", c.AccessSessionKey("jti-1"))
	assert.Equal(t, "sf:cache:chatbot:q", c.CacheKey("chatbot", " ", "q"))
}

func TestUninitializedClient(t *testing.T) {
	c := &Client{}
	ctx := context.Background()
	assert.Error(t, c.Ping(ctx))
	_, err := c.Incr(ctx, "k")
	assert.Error(t, err)
	_, err = c.GetDel(ctx, "k")
	assert.Error(t, err)
	assert.NoError(t, c.Close())
}

func TestOptionsFillFromConfig(t *testing.T) {
	opts, err := options(config.RedisConfig{
		URL:         "redis://:secret@cache.internal:6380/2",
		DB:          5,
		PoolSize:    25,
		DialTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB, "db from url wins")
	assert.Equal(t, 25, opts.PoolSize)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)

	opts, err = options(config.RedisConfig{Address: "localhost:6379", DB: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, opts.DB)

	_, err = options(config.RedisConfig{})
	assert.Error(t, err)
}
