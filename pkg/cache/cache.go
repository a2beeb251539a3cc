package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/citas/internal/observability/metrics"
	"github.com/aryan0dhankhar/citas/internal/reliability/circuitbreaker"
)

// DefaultTTL bounds how long a snapshot can outlive a missed invalidation
const DefaultTTL = 300 * time.Second

// ErrMiss is returned by a Backend when the key is absent or expired
var ErrMiss = errors.New("cache: miss")

// Backend stores string snapshots with an expiry
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Layer is the cache-aside front of the entity store. It never returns an
// error: a failing backend is logged, counted and treated as a miss. A nil
// *Layer is valid and caches nothing.
type Layer struct {
	backend Backend
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewLayer wraps backend. A nil backend yields a disabled layer.
func NewLayer(backend Backend, ttl time.Duration, logger *slog.Logger) *Layer {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cb := circuitbreaker.NewCircuitBreaker(3, 1, 10*time.Second)
	cb.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("cache breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
		metrics.SetCacheBreakerOpen(to == circuitbreaker.StateOpen)
	})
	return &Layer{backend: backend, ttl: ttl, breaker: cb, logger: logger}
}

// TTL is the expiry used by Fetch
func (l *Layer) TTL() time.Duration {
	if l == nil {
		return DefaultTTL
	}
	return l.ttl
}

// Enabled reports whether reads can hit a backend
func (l *Layer) Enabled() bool {
	return l != nil && l.backend != nil
}

// Get decodes the snapshot stored under key into dst and reports a hit.
func (l *Layer) Get(ctx context.Context, key string, dst any) bool {
	if !l.usable("get") {
		return false
	}
	raw, err := l.backend.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		l.breaker.RecordSuccess()
		metrics.ObserveCache("get", "miss")
		return false
	}
	if err != nil {
		l.fail("get", key, err)
		return false
	}
	l.breaker.RecordSuccess()
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		l.logger.Warn("discarding undecodable cache entry", slog.String("key", key), slog.String("error", err.Error()))
		metrics.ObserveCache("get", "miss")
		return false
	}
	metrics.ObserveCache("get", "hit")
	return true
}

// Set stores a JSON snapshot of value, overwriting any previous entry
func (l *Layer) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !l.usable("set") {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		l.logger.Warn("cache value not serializable", slog.String("key", key), slog.String("error", err.Error()))
		metrics.ObserveCache("set", "error")
		return
	}
	if err := l.backend.Set(ctx, key, string(raw), ttl); err != nil {
		l.fail("set", key, err)
		return
	}
	l.breaker.RecordSuccess()
	metrics.ObserveCache("set", "ok")
}

// Invalidate removes single entries
func (l *Layer) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 || !l.usable("invalidate") {
		return
	}
	if err := l.backend.Delete(ctx, keys...); err != nil {
		l.fail("invalidate", keys[0], err)
		return
	}
	l.breaker.RecordSuccess()
	metrics.ObserveCache("invalidate", "ok")
}

// InvalidateAll removes the aggregate key of each collection together with
// every list and per-id snapshot derived from it.
func (l *Layer) InvalidateAll(ctx context.Context, collections ...Collection) {
	for _, c := range collections {
		if !l.usable("invalidate_all") {
			return
		}
		if err := l.backend.DeletePrefix(ctx, c.Prefix()); err != nil {
			l.fail("invalidate_all", c.Prefix(), err)
			continue
		}
		l.breaker.RecordSuccess()
		metrics.ObserveCache("invalidate_all", "ok")
	}
}

func (l *Layer) usable(op string) bool {
	if !l.Enabled() {
		return false
	}
	if !l.breaker.AllowRequest() {
		metrics.ObserveCache(op, "skipped")
		return false
	}
	return true
}

func (l *Layer) fail(op, key string, err error) {
	l.breaker.RecordFailure()
	metrics.ObserveCache(op, "error")
	l.logger.Warn("cache backend error, falling back to store",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// Fetch returns the snapshot under key, or calls load and caches its result
// for the layer TTL. Load errors are returned and never cached.
func Fetch[T any](ctx context.Context, l *Layer, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if l.Get(ctx, key, &cached) {
		return cached, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	l.Set(ctx, key, v, l.TTL())
	return v, nil
}
