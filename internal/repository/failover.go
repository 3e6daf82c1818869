package repository

import (
	"context"
	"sync/atomic"
	"time"

	"tempatku/internal/models"

	"github.com/rs/zerolog"
)

// Cache bundles the place cache and rate limiter behind one failover point.
type Cache interface {
	GetApprovedPlaces(ctx context.Context) ([]*models.Place, bool, error)
	SetApprovedPlaces(ctx context.Context, places []*models.Place) error
	Invalidate(ctx context.Context) error
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// FailoverRepository serves from the primary (redis) until it errors, then
// flips to the in-memory fallback. The primary is probed again after a
// minute.
type FailoverRepository struct {
	primary   Cache
	fallback  Cache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverRepository(primary, fallback Cache, logger *zerolog.Logger) *FailoverRepository {
	return &FailoverRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverRepository) shouldProbe() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverRepository) GetApprovedPlaces(ctx context.Context) ([]*models.Place, bool, error) {
	if !r.isDown.Load() {
		places, ok, err := r.primary.GetApprovedPlaces(ctx)
		if err == nil {
			return places, ok, nil
		}
		r.markDown(err)
	} else if r.shouldProbe() {
		places, ok, err := r.primary.GetApprovedPlaces(ctx)
		if err == nil {
			r.isDown.Store(false)
			return places, ok, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetApprovedPlaces(ctx)
}

func (r *FailoverRepository) SetApprovedPlaces(ctx context.Context, places []*models.Place) error {
	if !r.isDown.Load() {
		err := r.primary.SetApprovedPlaces(ctx, places)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetApprovedPlaces(ctx, places)
}

func (r *FailoverRepository) Invalidate(ctx context.Context) error {
	if !r.isDown.Load() {
		err := r.primary.Invalidate(ctx)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Invalidate(ctx)
}

func (r *FailoverRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.Allow(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.Allow(ctx, key, limit, window)
}
