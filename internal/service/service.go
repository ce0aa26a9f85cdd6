package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jmwislek/order-notify-service/internal/cache"
	"github.com/jmwislek/order-notify-service/internal/models"
	"github.com/jmwislek/order-notify-service/internal/observability"
	"github.com/jmwislek/order-notify-service/internal/weather"
)

// ReadingService orchestrates weather reading retrieval using cache-aside pattern
// with upstream API fallback. Implements the service layer business logic.
type ReadingService struct {
	client weather.Client
	cache  cache.Cache
	ttl    time.Duration
}

// NewReadingService creates a new ReadingService with the provided dependencies.
// TTL specifies the cache expiration duration for weather readings.
func NewReadingService(client weather.Client, cache cache.Cache, ttl time.Duration) *ReadingService {
	return &ReadingService{
		client: client,
		cache:  cache,
		ttl:    ttl,
	}
}

// loggerFromContext extracts a zap.Logger from request context if present.
// Returns nil if logger is not found or context is invalid.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// GetReading retrieves a weather reading for the specified city using cache-aside pattern.
// Checks cache first, falls back to upstream API on cache miss, and populates cache on success.
// Returns the cached reading if available, otherwise fetches from upstream and caches the result.
func (s *ReadingService) GetReading(ctx context.Context, city string) (models.WeatherReading, error) {
	key := normalizeCity(city)
	start := time.Now()
	logger := loggerFromContext(ctx)

	getStart := time.Now()
	cached, ok, err := s.cache.Get(ctx, key)
	getDuration := time.Since(getStart).Seconds()
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get", categorizeCacheError(err)).Inc()
		observability.CacheOperationDuration.WithLabelValues("get", "error").Observe(getDuration)
	} else if ok {
		observability.CacheOperationDuration.WithLabelValues("get", "success").Observe(getDuration)
		observability.CacheHitsTotal.WithLabelValues("weather").Inc()
		if logger != nil {
			logger.Debug("cache hit", zap.String("city", key))
			logger.Debug("reading served", zap.String("city", key), zap.Bool("cached", true), zap.Duration("duration", time.Since(start)))
		}
		return cached, nil
	}

	if logger != nil {
		logger.Debug("cache miss, fetching upstream", zap.String("city", key))
	}

	temp, upstreamErr := s.client.Temperature(ctx, key)
	if upstreamErr != nil {
		return models.WeatherReading{}, fmt.Errorf("fetch weather for %s: %w", key, upstreamErr)
	}

	reading := models.WeatherReading{
		City:        key,
		Temperature: temp,
		GoodWeather: temp > weather.GoodWeatherThresholdC,
		Timestamp:   time.Now(),
	}

	setStart := time.Now()
	if setErr := s.cache.Set(ctx, key, reading, s.ttl); setErr != nil {
		observability.CacheErrorsTotal.WithLabelValues("set", categorizeCacheError(setErr)).Inc()
		observability.CacheOperationDuration.WithLabelValues("set", "error").Observe(time.Since(setStart).Seconds())
		if logger != nil {
			logger.Warn("cache set failed", zap.String("city", key), zap.Error(setErr))
		}
	} else {
		observability.CacheOperationDuration.WithLabelValues("set", "success").Observe(time.Since(setStart).Seconds())
	}
	if logger != nil {
		logger.Debug("reading served", zap.String("city", key), zap.Bool("cached", false), zap.Duration("duration", time.Since(start)))
	}
	return reading, nil
}

// categorizeCacheError returns a stable label for cache error metrics (timeout, connection, unknown).
func categorizeCacheError(err error) string {
	if err == nil {
		return "unknown"
	}
	errStr := err.Error()
	if strings.Contains(errStr, "timeout") {
		return "timeout"
	}
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "network") {
		return "connection"
	}
	return "unknown"
}

// normalizeCity normalizes city strings by trimming whitespace and converting to lowercase.
// Used to ensure consistent cache keys and API requests regardless of input format.
func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
