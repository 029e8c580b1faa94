package providers

import (
	"strconv"
	"time"
	"withings-mcp/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncToolCalls(tool string, failed bool)
	ObserveToolDuration(tool string, duration time.Duration)
	IncVendorRequests(endpoint string, vendorStatus int)
	ObserveVendorDuration(endpoint string, duration time.Duration)
	IncTokenRefreshes(failed bool)
	SetTokenExpiry(expiresAt time.Time)
	IncCacheHits()
	IncCacheMisses()
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	toolCalls       *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	vendorRequests  *prometheus.CounterVec
	vendorDuration  *prometheus.HistogramVec
	tokenRefreshes  *prometheus.CounterVec
	tokenExpiry     prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncToolCalls(tool string, failed bool) {
	m.toolCalls.WithLabelValues(tool, outcome(failed)).Inc()
}

func (m *MetricsProvider) ObserveToolDuration(tool string, duration time.Duration) {
	m.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncVendorRequests(endpoint string, vendorStatus int) {
	m.vendorRequests.WithLabelValues(endpoint, strconv.Itoa(vendorStatus)).Inc()
}

func (m *MetricsProvider) ObserveVendorDuration(endpoint string, duration time.Duration) {
	m.vendorDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncTokenRefreshes(failed bool) {
	m.tokenRefreshes.WithLabelValues(outcome(failed)).Inc()
}

func (m *MetricsProvider) SetTokenExpiry(expiresAt time.Time) {
	m.tokenExpiry.Set(float64(expiresAt.Unix()))
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func outcome(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "withings_mcp_http_requests_total",
			Help: "Total number of HTTP requests served by the telemetry and callback listeners",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "withings_mcp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		toolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "withings_mcp_tool_calls_total",
			Help: "Total number of MCP tool invocations",
		}, []string{"tool", "outcome"}),

		toolDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "withings_mcp_tool_duration_seconds",
			Help:    "MCP tool call duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),

		vendorRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "withings_mcp_vendor_requests_total",
			Help: "Total number of Withings API requests by vendor status",
		}, []string{"endpoint", "status"}),

		vendorDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "withings_mcp_vendor_request_duration_seconds",
			Help:    "Withings API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		tokenRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "withings_mcp_token_refreshes_total",
			Help: "Total number of access token refresh attempts",
		}, []string{"outcome"}),

		tokenExpiry: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "withings_mcp_token_expiry_timestamp_seconds",
			Help: "Unix time at which the current access token expires",
		}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "withings_mcp_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "withings_mcp_cache_misses_total",
			Help: "Total number of response cache misses",
		}),
	}
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncToolCalls(_ string, _ bool)                    {}
func (n *noopMetrics) ObserveToolDuration(_ string, _ time.Duration)    {}
func (n *noopMetrics) IncVendorRequests(_ string, _ int)                {}
func (n *noopMetrics) ObserveVendorDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncTokenRefreshes(_ bool)                         {}
func (n *noopMetrics) SetTokenExpiry(_ time.Time)                       {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
