package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Schema diff metrics
	DiffTotal      *prometheus.CounterVec
	DiffDuration   *prometheus.HistogramVec
	DiffTableCount *prometheus.GaugeVec

	// Statement execution metrics
	StatementsApplied *prometheus.CounterVec
	StatementsFailed  *prometheus.CounterVec
	InstallDuration   *prometheus.HistogramVec

	// Connection health metrics
	ConnectionUp *prometheus.GaugeVec
}

var metrics *PrometheusMetrics

// InitMetrics initializes all Prometheus metrics
func InitMetrics() {
	metrics = &PrometheusMetrics{
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migrator_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "migrator_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		DiffTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migrator_diff_total",
				Help: "Total number of schema diff computations",
			},
			[]string{"connection", "status"},
		),
		DiffDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "migrator_diff_duration_seconds",
				Help:    "Schema diff computation time in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"connection"},
		),
		DiffTableCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "migrator_diff_changed_tables",
				Help: "Number of tables the last diff proposed to change",
			},
			[]string{"connection", "kind"},
		),

		StatementsApplied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migrator_statements_applied_total",
				Help: "Total number of successfully executed DDL statements",
			},
			[]string{"connection"},
		),
		StatementsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migrator_statements_failed_total",
				Help: "Total number of failed DDL statements",
			},
			[]string{"connection"},
		),
		InstallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "migrator_install_duration_seconds",
				Help:    "Install run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"connection"},
		),

		ConnectionUp: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "migrator_connection_up",
				Help: "Whether the connection is reachable (1=up, 0=down)",
			},
			[]string{"connection", "database_type"},
		),
	}
}

// GetMetrics returns the initialized metrics
func GetMetrics() *PrometheusMetrics {
	return metrics
}

// PrometheusMiddleware is a Gin middleware that records HTTP metrics
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		metrics.HttpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		metrics.HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
	}
}

// RecordDiff records one schema diff computation
func RecordDiff(connection, status string, duration time.Duration) {
	if metrics == nil {
		return
	}

	metrics.DiffTotal.WithLabelValues(connection, status).Inc()
	metrics.DiffDuration.WithLabelValues(connection).Observe(duration.Seconds())
}

// RecordDiffTables updates the per-kind table gauges for the last diff
func RecordDiffTables(connection string, newTables, changedTables, removedTables int) {
	if metrics == nil {
		return
	}

	metrics.DiffTableCount.WithLabelValues(connection, "new").Set(float64(newTables))
	metrics.DiffTableCount.WithLabelValues(connection, "changed").Set(float64(changedTables))
	metrics.DiffTableCount.WithLabelValues(connection, "removed").Set(float64(removedTables))
}

// RecordInstall records the outcome of one install run
func RecordInstall(connection string, duration time.Duration, applied, failed int) {
	if metrics == nil {
		return
	}

	metrics.StatementsApplied.WithLabelValues(connection).Add(float64(applied))
	metrics.StatementsFailed.WithLabelValues(connection).Add(float64(failed))
	metrics.InstallDuration.WithLabelValues(connection).Observe(duration.Seconds())
}

// UpdateConnectionHealth updates the reachability gauge for a connection
func UpdateConnectionHealth(connection, databaseType string, up bool) {
	if metrics == nil {
		return
	}

	value := 0.0
	if up {
		value = 1.0
	}
	metrics.ConnectionUp.WithLabelValues(connection, databaseType).Set(value)
}
