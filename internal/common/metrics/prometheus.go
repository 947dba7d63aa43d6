// Package metrics 提供 Prometheus 指标收集
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标收集器
type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge
	permCacheHitsTotal   prometheus.Counter
	permCacheMissesTotal prometheus.Counter
	permDeniedTotal      *prometheus.CounterVec
	loginTotal           *prometheus.CounterVec
	operationLogsTotal   *prometheus.CounterVec
	operationLogDropped  prometheus.Counter
	quoteIngestTotal     *prometheus.CounterVec
}

var defaultMetrics *Metrics

// Init 初始化指标收集器
func Init(namespace string) *Metrics {
	if namespace == "" {
		namespace = "stock_admin"
	}

	m := &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		permCacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "perm_cache_hits_total",
				Help:      "Total number of permission cache hits",
			},
		),
		permCacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "perm_cache_misses_total",
				Help:      "Total number of permission cache misses",
			},
		),
		permDeniedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "perm_denied_total",
				Help:      "Total number of permission denials",
			},
			[]string{"permission"},
		),
		loginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_total",
				Help:      "Total number of login attempts",
			},
			[]string{"result"},
		),
		operationLogsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_logs_total",
				Help:      "Total number of operation logs written",
			},
			[]string{"module"},
		),
		operationLogDropped: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_logs_dropped_total",
				Help:      "Total number of operation logs dropped due to full queue",
			},
		),
		quoteIngestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quote_ingest_total",
				Help:      "Total number of stock quote ingestions",
			},
			[]string{"result"},
		),
	}

	defaultMetrics = m
	return m
}

// GetMetrics 获取默认指标收集器
func GetMetrics() *Metrics {
	if defaultMetrics == nil {
		return Init("")
	}
	return defaultMetrics
}

// Middleware 返回 Gin 中间件
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 跳过 metrics 端点本身
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		m.httpRequestsInFlight.Inc()

		c.Next()

		m.httpRequestsInFlight.Dec()
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// Handler 返回 Prometheus HTTP 处理器
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordPermCacheHit 记录权限缓存命中
func (m *Metrics) RecordPermCacheHit() {
	m.permCacheHitsTotal.Inc()
}

// RecordPermCacheMiss 记录权限缓存未命中
func (m *Metrics) RecordPermCacheMiss() {
	m.permCacheMissesTotal.Inc()
}

// RecordPermDenied 记录权限拒绝
func (m *Metrics) RecordPermDenied(permission string) {
	m.permDeniedTotal.WithLabelValues(permission).Inc()
}

// RecordLogin 记录登录尝试
func (m *Metrics) RecordLogin(result string) {
	m.loginTotal.WithLabelValues(result).Inc()
}

// RecordOperationLog 记录操作日志写入
func (m *Metrics) RecordOperationLog(module string) {
	m.operationLogsTotal.WithLabelValues(module).Inc()
}

// RecordOperationLogDropped 记录操作日志丢弃
func (m *Metrics) RecordOperationLogDropped() {
	m.operationLogDropped.Inc()
}

// RecordQuoteIngest 记录行情推送
func (m *Metrics) RecordQuoteIngest(result string) {
	m.quoteIngestTotal.WithLabelValues(result).Inc()
}
