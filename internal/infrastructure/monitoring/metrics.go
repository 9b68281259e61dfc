package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Pipeline metrics
	ResolvesTotal     *prometheus.CounterVec
	ResolveDuration   *prometheus.HistogramVec
	TransportFailures *prometheus.CounterVec
	Cancellations     prometheus.Counter

	// Cache metrics, labeled by level (response, frame)
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Surface metrics
	FramesActive  prometheus.Gauge
	CapturesHeld  prometheus.Gauge
	ConsumersLive prometheus.Gauge

	// Progress metrics
	ProgressTasks      prometheus.Gauge
	AggregatorsStarted prometheus.Counter

	// Session metrics
	SessionsActive   prometheus.Gauge
	SessionsSaved    prometheus.Counter
	SessionsRestored prometheus.Counter

	// Registry metrics
	Definitions prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedkit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "embedkit_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "embedkit_http_request_size_bytes",
				Help:    "HTTP request size",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),
		ResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "embedkit_http_response_size_bytes",
				Help:    "HTTP response size",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),
		ResolvesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedkit_resolves_total",
				Help: "Resource resolutions by definition, outcome, and source",
			},
			[]string{"definition", "status", "source"},
		),
		ResolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "embedkit_resolve_duration_seconds",
				Help:    "Resolution latency from dispatch to terminal callback",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"definition"},
		),
		TransportFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedkit_transport_failures_total",
				Help: "Failed provider exchanges by definition",
			},
			[]string{"definition"},
		),
		Cancellations: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "embedkit_cancellations_total",
				Help: "Requests canceled before a terminal callback",
			},
		),
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedkit_cache_hits_total",
				Help: "Cache hits by level (response, frame)",
			},
			[]string{"level"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedkit_cache_misses_total",
				Help: "Cache misses by level (response, frame)",
			},
			[]string{"level"},
		),
		FramesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "embedkit_frames_active",
				Help: "Isolated rendering surfaces currently attached",
			},
		),
		CapturesHeld: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "embedkit_captures_held",
				Help: "Captured subtrees waiting for reuse",
			},
		),
		ConsumersLive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "embedkit_consumers_live",
				Help: "Embed consumer instances currently alive",
			},
		),
		ProgressTasks: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "embedkit_progress_tasks",
				Help: "Outstanding progress-aggregator tasks",
			},
		),
		AggregatorsStarted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "embedkit_aggregators_started_total",
				Help: "Progress aggregator instances created",
			},
		),
		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "embedkit_sessions_active",
				Help: "Open session contexts",
			},
		),
		SessionsSaved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "embedkit_sessions_saved_total",
				Help: "Session snapshots written",
			},
		),
		SessionsRestored: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "embedkit_sessions_restored_total",
				Help: "Session snapshots restored",
			},
		),
		Definitions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "embedkit_definitions",
				Help: "Registered provider definitions",
			},
		),
		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "embedkit_ws_connections",
				Help: "Active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedkit_ws_messages_total",
				Help: "WebSocket messages by type and direction",
			},
			[]string{"type", "direction"},
		),
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "embedkit_uptime_seconds",
				Help: "Service uptime",
			},
		),
		startTime: time.Now(),
	}

	return m
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}

// RecordResolve records one finished resolution.
// status is "success" or an error kind; source is "cache", "provider",
// or "capture".
func (m *Metrics) RecordResolve(definition, status, source string, duration time.Duration) {
	m.ResolvesTotal.WithLabelValues(definition, status, source).Inc()
	m.ResolveDuration.WithLabelValues(definition).Observe(duration.Seconds())
}

// RecordCacheHit records a hit at the given cache level
func (m *Metrics) RecordCacheHit(level string) {
	m.CacheHits.WithLabelValues(level).Inc()
}

// RecordCacheMiss records a miss at the given cache level
func (m *Metrics) RecordCacheMiss(level string) {
	m.CacheMisses.WithLabelValues(level).Inc()
}

// RecordTransportFailure records a failed exchange for a definition
func (m *Metrics) RecordTransportFailure(definition string) {
	m.TransportFailures.WithLabelValues(definition).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(msgType, direction string) {
	m.WSMessages.WithLabelValues(msgType, direction).Inc()
}
