package environment

import (
	"context"
	"fmt"
	"time"

	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"
)

// WeatherRepository returns the day's weather, or nil when none was recorded.
type WeatherRepository interface {
	GetWeather(ctx context.Context, storeID uint64, date time.Time) (*domain.WeatherRecord, error)
}

type EventRepository interface {
	GetEvents(ctx context.Context, storeID uint64, date time.Time) ([]domain.CalendarEvent, error)
}

// SnapshotCache returns nil, nil on a miss.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, storeID uint64, at time.Time) (*domain.EnvironmentSnapshot, error)
	SetSnapshot(ctx context.Context, snap domain.EnvironmentSnapshot, ttl time.Duration) error
}

const defaultCacheTTL = 30 * time.Minute

type Loader struct {
	weatherRepo WeatherRepository
	eventRepo   EventRepository
	cache       SnapshotCache
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewLoader accepts nil repositories and a nil cache; a missing source is simply absent.
func NewLoader(weatherRepo WeatherRepository, eventRepo EventRepository, cache SnapshotCache) *Loader {
	return &Loader{
		weatherRepo: weatherRepo,
		eventRepo:   eventRepo,
		cache:       cache,
		cacheTTL:    defaultCacheTTL,
		now:         time.Now,
	}
}

// Load resolves weather, events and the temporal bucket into a snapshot. Each source
// degrades on its own; the only error is a cancelled context.
func (l *Loader) Load(ctx context.Context, storeID uint64, date *time.Time) (domain.EnvironmentSnapshot, error) {
	at := l.now()
	if date != nil {
		at = *date
	}

	if err := ctx.Err(); err != nil {
		return domain.NeutralEnvironment(storeID, at), fmt.Errorf("context error: %w", err)
	}

	if l.cache != nil {
		cached, err := l.cache.GetSnapshot(ctx, storeID, at)
		if err != nil {
			logger.Debug("environment cache read failed", "store_id", storeID, "error", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	snap := domain.NeutralEnvironment(storeID, at)
	snap.TimeBucket = TimeBucket(at)
	snap.TemporalFactors = TemporalImpact(at)
	snap.DataQuality.Temporal = true

	if l.weatherRepo != nil {
		rec, err := l.weatherRepo.GetWeather(ctx, storeID, at)
		switch {
		case err != nil:
			logger.Warn("weather source unavailable", "store_id", storeID, "error", err)
		case rec != nil:
			snap.Weather = rec
			snap.WeatherFactors = WeatherImpact(*rec)
			snap.DataQuality.Weather = true
		}
	}

	if l.eventRepo != nil {
		events, err := l.eventRepo.GetEvents(ctx, storeID, at)
		if err != nil {
			logger.Warn("event source unavailable", "store_id", storeID, "error", err)
		} else {
			snap.Events = events
			snap.EventFactors = EventImpact(events)
			snap.DataQuality.Events = true
		}
	}

	snap.Combined = snap.WeatherFactors.Times(snap.EventFactors).Times(snap.TemporalFactors)

	if err := ctx.Err(); err != nil {
		return snap, fmt.Errorf("context error: %w", err)
	}

	if l.cache != nil {
		if err := l.cache.SetSnapshot(ctx, snap, l.cacheTTL); err != nil {
			logger.Debug("environment cache write failed", "store_id", storeID, "error", err)
		}
	}

	return snap, nil
}
