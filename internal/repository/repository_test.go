package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"tempatku/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepository(client, time.Minute), mr
}

func samplePlaces() []*models.Place {
	return []*models.Place{
		{ID: "p1", Name: "Kedai Uventa", Status: models.StatusApproved},
		{ID: "p2", Name: "Taman GOR", Status: models.StatusApproved},
	}
}

func TestRedisPlaceCache(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	_, ok, err := repo.GetApprovedPlaces(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache is a miss, not an error")

	require.NoError(t, repo.SetApprovedPlaces(ctx, samplePlaces()))

	places, ok, err := repo.GetApprovedPlaces(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, places, 2)
	assert.Equal(t, "Kedai Uventa", places[0].Name)

	// TTL expiry turns the hit back into a miss.
	mr.FastForward(2 * time.Minute)
	_, ok, err = repo.GetApprovedPlaces(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetApprovedPlaces(ctx, samplePlaces()))
	require.NoError(t, repo.Invalidate(ctx))
	_, ok, err = repo.GetApprovedPlaces(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRateLimit(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.Allow(ctx, "client-a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within limit", i+1)
	}

	allowed, err := repo.Allow(ctx, "client-a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Another key is unaffected.
	allowed, err = repo.Allow(ctx, "client-b", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Window expiry resets the counter.
	mr.FastForward(2 * time.Minute)
	allowed, err = repo.Allow(ctx, "client-a", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisNilClient(t *testing.T) {
	repo := NewRedisRepository(nil, time.Minute)
	ctx := context.Background()

	_, _, err := repo.GetApprovedPlaces(ctx)
	assert.Error(t, err)
	assert.Error(t, repo.SetApprovedPlaces(ctx, nil))
	assert.Error(t, repo.Invalidate(ctx))
	_, err = repo.Allow(ctx, "x", 1, time.Minute)
	assert.Error(t, err)
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository(50 * time.Millisecond)
	ctx := context.Background()

	_, ok, err := repo.GetApprovedPlaces(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetApprovedPlaces(ctx, samplePlaces()))
	places, ok, err := repo.GetApprovedPlaces(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, places, 2)

	time.Sleep(60 * time.Millisecond)
	_, ok, err = repo.GetApprovedPlaces(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "entry expired")

	require.NoError(t, repo.SetApprovedPlaces(ctx, samplePlaces()))
	require.NoError(t, repo.Invalidate(ctx))
	_, ok, _ = repo.GetApprovedPlaces(ctx)
	assert.False(t, ok)
}

func TestMemoryRateLimit(t *testing.T) {
	repo := NewMemoryRepository(time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := repo.Allow(ctx, "k", 2, 50*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := repo.Allow(ctx, "k", 2, 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(60 * time.Millisecond)
	allowed, err = repo.Allow(ctx, "k", 2, 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, allowed)
}

// failingCache always errors, standing in for a dead redis.
type failingCache struct{}

func (f *failingCache) GetApprovedPlaces(ctx context.Context) ([]*models.Place, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (f *failingCache) SetApprovedPlaces(ctx context.Context, places []*models.Place) error {
	return errors.New("connection refused")
}

func (f *failingCache) Invalidate(ctx context.Context) error {
	return errors.New("connection refused")
}

func (f *failingCache) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func TestFailoverRepository(t *testing.T) {
	logger := zerolog.Nop()
	fallback := NewMemoryRepository(time.Minute)
	failover := NewFailoverRepository(&failingCache{}, fallback, &logger)
	ctx := context.Background()

	// First call trips the breaker and serves from fallback.
	require.NoError(t, failover.SetApprovedPlaces(ctx, samplePlaces()))

	places, ok, err := failover.GetApprovedPlaces(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, places, 2)

	allowed, err := failover.Allow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = failover.Allow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestFailoverRecovers(t *testing.T) {
	logger := zerolog.Nop()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	primary := NewRedisRepository(client, time.Minute)
	fallback := NewMemoryRepository(time.Minute)
	failover := NewFailoverRepository(primary, fallback, &logger)
	ctx := context.Background()

	// Healthy primary serves reads.
	require.NoError(t, failover.SetApprovedPlaces(ctx, samplePlaces()))
	_, ok, err := failover.GetApprovedPlaces(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, failover.isDown.Load())

	// Primary outage flips to fallback without surfacing an error.
	mr.Close()
	_, _, err = failover.GetApprovedPlaces(ctx)
	require.NoError(t, err)
	assert.True(t, failover.isDown.Load())
}
