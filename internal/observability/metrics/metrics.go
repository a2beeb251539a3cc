package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citas_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "citas_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	cacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citas_cache_operations_total",
		Help: "Cache operations by operation and result",
	}, []string{"op", "result"})

	cacheBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citas_cache_breaker_open",
		Help: "1 while the cache circuit breaker skips the backend",
	})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citas_notifications_total",
		Help: "Observer invocations by observer and result",
	}, []string{"observer", "result"})

	appointmentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "citas_appointments_created_total",
		Help: "Appointments created by kind",
	}, []string{"kind"})

	cacheSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citas_cache_swept_entries_total",
		Help: "Expired in-memory cache entries removed by the sweeper",
	})

	liveFeedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citas_live_feed_clients",
		Help: "Open doctor live feed websocket connections",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveCache counts one cache operation. result is hit, miss, ok, error or skipped.
func ObserveCache(op, result string) {
	cacheOperations.WithLabelValues(op, result).Inc()
}

// SetCacheBreakerOpen mirrors the cache breaker state
func SetCacheBreakerOpen(open bool) {
	if open {
		cacheBreakerState.Set(1)
		return
	}
	cacheBreakerState.Set(0)
}

// ObserveNotification counts one observer invocation
func ObserveNotification(observer, result string) {
	notifications.WithLabelValues(observer, result).Inc()
}

// ObserveAppointmentCreated counts a persisted appointment
func ObserveAppointmentCreated(kind string) {
	appointmentsCreated.WithLabelValues(kind).Inc()
}

// ObserveCacheSweep adds the number of swept entries
func ObserveCacheSweep(removed int) {
	if removed > 0 {
		cacheSwept.Add(float64(removed))
	}
}

// LiveFeedConnected tracks live feed connections; pass -1 on disconnect.
func LiveFeedConnected(delta int) {
	liveFeedClients.Add(float64(delta))
}
