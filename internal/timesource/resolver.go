// Package timesource resolves "now" in the platform's fixed timezone (WITA)
// from a prioritized chain of external providers, with a deterministic local
// fallback. Resolution never fails; callers can check the snapshot source to
// tell authoritative results from fallback ones.
package timesource

import (
	"context"
	"time"

	"tempatku/internal/metrics"
	"tempatku/internal/models"

	"github.com/rs/zerolog"
)

// Resolver tries each provider in order and returns the first usable result.
// No caching: every call re-resolves, so a request that needs a stable "now"
// must resolve once and reuse the snapshot.
type Resolver struct {
	providers []Provider
	zone      string
	offset    time.Duration
	now       func() time.Time
	logger    *zerolog.Logger
}

func NewResolver(providers []Provider, logger *zerolog.Logger) *Resolver {
	return &Resolver{
		providers: providers,
		zone:      models.WITAZone,
		offset:    time.Duration(models.WITAOffsetHours) * time.Hour,
		now:       time.Now,
		logger:    logger,
	}
}

// Resolve returns the current WITA time. Provider failures fall through the
// chain; when every provider fails the snapshot is computed from the local
// clock plus the fixed UTC+8 offset and tagged SourceLocalFallback.
func (r *Resolver) Resolve(ctx context.Context) models.TimeSnapshot {
	for _, p := range r.providers {
		instant, err := p.FetchTime(ctx, r.zone)
		if err != nil {
			metrics.IncTimeProvider(p.Name(), "failure")
			r.logger.Warn().Err(err).Str("provider", p.Name()).Msg("time provider failed")
			continue
		}
		metrics.IncTimeProvider(p.Name(), "success")
		return models.NewTimeSnapshot(instant, sourceFor(p.Name()))
	}

	metrics.IncTimeProvider("local", "fallback")
	local := r.now().UTC().Add(r.offset)
	r.logger.Info().Str("time", local.Format("15:04:05")).Msg("using local time fallback")
	return models.NewTimeSnapshot(local, models.SourceLocalFallback)
}

func sourceFor(name string) models.TimeSource {
	switch name {
	case "timeapi":
		return models.SourceTimeAPI
	case "worldtimeapi":
		return models.SourceWorldTimeAPI
	default:
		return models.TimeSource(name)
	}
}
