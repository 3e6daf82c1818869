package repository

import (
	"context"
	"sync"
	"time"

	"tempatku/internal/models"
)

// MemoryRepository is the in-process fallback for the place cache and rate
// limiter when redis is down or not configured.
type MemoryRepository struct {
	mu         sync.RWMutex
	places     []*models.Place
	expiresAt  time.Time
	ttl        time.Duration
	rateLimits sync.Map
}

func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{ttl: ttl}
}

func (r *MemoryRepository) GetApprovedPlaces(ctx context.Context) ([]*models.Place, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.places == nil || time.Now().After(r.expiresAt) {
		return nil, false, nil
	}
	return r.places, true, nil
}

func (r *MemoryRepository) SetApprovedPlaces(ctx context.Context, places []*models.Place) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.places = places
	r.expiresAt = time.Now().Add(r.ttl)
	return nil
}

func (r *MemoryRepository) Invalidate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.places = nil
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
