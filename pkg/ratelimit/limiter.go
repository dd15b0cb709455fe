package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit gating.
var (
	rateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biomed_ratelimit_waits_total",
		Help: "Total number of requests that waited for a rate limit slot",
	}, []string{"domain"})

	windowUsage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "biomed_ratelimit_window_usage",
		Help: "Requests used in the current rate limit window",
	}, []string{"domain"})
)

// Limiter gates requests per upstream domain using fixed windows.
type Limiter struct {
	redis  *redis.Client
	limits map[string]Limit
	logger zerolog.Logger

	mu      sync.Mutex
	windows map[string]*window
}

// NewLimiter creates a rate limiter for the given per-domain limits.
// redisClient may be nil; the windows are then process-local.
func NewLimiter(redisClient *redis.Client, limits map[string]Limit, logger zerolog.Logger) *Limiter {
	return &Limiter{
		redis:   redisClient,
		limits:  limits,
		logger:  logger,
		windows: make(map[string]*window),
	}
}

// Acquire blocks until a request slot for domain is available or ctx is done.
// Domains without a configured limit pass through immediately.
func (l *Limiter) Acquire(ctx context.Context, domain string) error {
	limit, ok := l.limits[domain]
	if !ok {
		return nil
	}

	for {
		wait := l.reserve(ctx, domain, limit)
		if wait <= 0 {
			return nil
		}

		rateLimitWaits.WithLabelValues(domain).Inc()
		l.logger.Debug().
			Str("domain", domain).
			Dur("wait", wait).
			Msg("Rate limit window exhausted, waiting")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// reserve tries to claim a slot in the current window. It returns 0 when the
// slot was claimed, or the time until the window resets.
func (l *Limiter) reserve(ctx context.Context, domain string, limit Limit) time.Duration {
	if l.redis != nil {
		wait, err := l.reserveShared(ctx, domain, limit)
		if err == nil {
			return wait
		}
		l.logger.Warn().
			Err(err).
			Str("domain", domain).
			Msg("Redis rate limit failed, falling back to local window")
	}
	return l.reserveLocal(domain, limit)
}

// reserveLocal claims a slot in the process-local window for domain.
func (l *Limiter) reserveLocal(domain string, limit Limit) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w := l.windows[domain]
	if w == nil || w.expired(now, limit) {
		w = &window{start: now}
		l.windows[domain] = w
	}

	if w.count < limit.Requests {
		w.count++
		windowUsage.WithLabelValues(domain).Set(float64(w.count))
		return 0
	}
	return w.resetsIn(now, limit)
}

// reserveShared claims a slot in the Redis-backed window shared across
// processes. Window keys carry the window number so stale windows expire on
// their own.
func (l *Limiter) reserveShared(ctx context.Context, domain string, limit Limit) (time.Duration, error) {
	now := time.Now()
	windowID := now.UnixNano() / limit.Window.Nanoseconds()
	key := fmt.Sprintf("biomed:ratelimit:%s:%d", domain, windowID)

	pipe := l.redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*limit.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}

	count := incr.Val()
	if count <= int64(limit.Requests) {
		windowUsage.WithLabelValues(domain).Set(float64(count))
		return 0, nil
	}

	next := time.Unix(0, (windowID+1)*limit.Window.Nanoseconds())
	return next.Sub(now), nil
}
