package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bankView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestComputeKey(t *testing.T) {
	assert.Equal(t, "xpch.banks.prod", ComputeKey("production", "xpch.banks"))
	assert.Equal(t, "xpch.banks", ComputeKey("development", "xpch.banks"))
	assert.Equal(t, "xpch.bank.bnk-1", DetailKey("xpch.bank", "bnk-1"))
}

func TestGetOrLoadMissThenHit(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewViewCache[[]bankView](client, "production", time.Hour)
	ctx := context.Background()

	var calls int
	load := func(ctx context.Context) (*[]bankView, error) {
		calls++
		banks := []bankView{{ID: "bnk-1", Name: "Access"}}
		return &banks, nil
	}

	first, err := cache.GetOrLoad(ctx, "xpch.banks", load)
	require.NoError(t, err)
	second, err := cache.GetOrLoad(ctx, "xpch.banks", load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, *first, *second)
	assert.True(t, mr.Exists("xpch.banks.prod"))
	assert.Equal(t, time.Hour, mr.TTL("xpch.banks.prod"))
}

func TestGetOrLoadErrorIsNotCached(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewViewCache[bankView](client, "development", 0)

	_, err := cache.GetOrLoad(context.Background(), "xpch.bank.x", func(context.Context) (*bankView, error) {
		return nil, errors.New("bank not found")
	})

	assert.EqualError(t, err, "bank not found")
	assert.False(t, mr.Exists("xpch.bank.x"))
}

func TestDefaultTTLApplied(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewViewCache[bankView](client, "development", 0)

	cache.Set(context.Background(), "xpch.bank.bnk-1", &bankView{ID: "bnk-1"})

	assert.Equal(t, DefaultTTL, mr.TTL("xpch.bank.bnk-1"))
}

func TestDeleteRemovesQualifiedKeys(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	cache := NewViewCache[bankView](client, "production", 0)

	cache.Set(ctx, "xpch.bank.bnk-1", &bankView{ID: "bnk-1"})
	require.NoError(t, mr.Set("xpch.banks.prod", "[]"))

	NewKeyspace(client, "production").Delete(ctx, "xpch.banks", "xpch.bank.bnk-1")

	assert.False(t, mr.Exists("xpch.banks.prod"))
	assert.False(t, mr.Exists("xpch.bank.bnk-1.prod"))
	_, ok := cache.Get(ctx, "xpch.bank.bnk-1")
	assert.False(t, ok)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	mr, client := newTestRedis(t)
	require.NoError(t, mr.Set("xpch.bank.bad", "{"))

	_, ok := NewViewCache[bankView](client, "development", 0).Get(context.Background(), "xpch.bank.bad")
	assert.False(t, ok)
}
