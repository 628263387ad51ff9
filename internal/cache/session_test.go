package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

func sampleSession() *Session {
	return &Session{
		Items: []domain.InputItem{
			{ID: "A", Warehouse: "W", DemandData: []float64{1, 2, 3}, LeadTime: domain.Float(14)},
		},
		Config:   domain.DefaultCalculationConfig(),
		FileName: "plan.xlsx",
	}
}

func TestMemorySessionStore_SaveAndGet(t *testing.T) {
	store := NewMemorySessionStore(0)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "s1", sampleSession()))

	got, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.HasData())
	assert.Equal(t, "plan.xlsx", got.FileName)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "s1"))
	_, ok, _ = store.Get(ctx, "s1")
	assert.False(t, ok)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleSession()))

	now = now.Add(30 * time.Second)
	_, ok, _ := store.Get(ctx, "s1")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = store.Get(ctx, "s1")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemorySessionStore_EmptyID(t *testing.T) {
	store := NewMemorySessionStore(0)

	_, _, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptySessionID)
	assert.ErrorIs(t, store.Save(context.Background(), "", sampleSession()), ErrEmptySessionID)
}

func TestNewSessionStore_DisabledCacheUsesMemory(t *testing.T) {
	store, err := NewSessionStore(config.CacheConfig{Enabled: false, SessionTTLSeconds: 60})
	require.NoError(t, err)
	assert.IsType(t, &MemorySessionStore{}, store)
}

func TestSessionEncoding_KeepsOptionalParameters(t *testing.T) {
	payload, err := encodeSession(sampleSession())
	require.NoError(t, err)

	got, err := decodeSession(payload)
	require.NoError(t, err)

	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].LeadTime)
	assert.Equal(t, 14.0, *got.Items[0].LeadTime)
	assert.Nil(t, got.Items[0].UnitCost)
	assert.Equal(t, domain.PeriodMonthly, got.Config.ForecastingPeriod)
}

func TestBuildSessionKey(t *testing.T) {
	key := buildSessionKey("abc")
	assert.Equal(t, "session:a9993e364706816aba3e25717850c26c9cd0d89d", key)
	assert.NotEqual(t, key, buildSessionKey("abd"))
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.CacheConfig{RedisPassword: "pw", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = redisOptions(config.CacheConfig{RedisURL: "redis://cache:6380/1"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 1, opts.DB)

	_, err = redisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}
