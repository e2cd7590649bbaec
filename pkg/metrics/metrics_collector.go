package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 订单与授权指标
	ordersCreatedTotal     prometheus.Counter
	orderTransitionsTotal  *prometheus.CounterVec
	licenseOperationsTotal *prometheus.CounterVec

	// 通知指标
	notificationsTotal *prometheus.CounterVec

	// 缓存指标
	cacheRequestsTotal *prometheus.CounterVec
}

// NewMetricsCollector 创建指标收集器并注册到 reg
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		ordersCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Total number of orders created",
			},
		),

		orderTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transitions_total",
				Help: "Total number of committed order status transitions",
			},
			[]string{"from", "to"},
		),

		licenseOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "license_operations_total",
				Help: "Total number of license grants and revocations",
			},
			[]string{"operation", "product_type"},
		),

		notificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Total number of notification deliveries by outcome",
			},
			[]string{"template", "outcome"},
		),

		cacheRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_requests_total",
				Help: "Total number of cache lookups",
			},
			[]string{"cache", "result"},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordOrderCreated 记录订单创建
func (m *MetricsCollector) RecordOrderCreated() {
	m.ordersCreatedTotal.Inc()
}

// RecordOrderTransition 记录订单状态流转
func (m *MetricsCollector) RecordOrderTransition(from, to string) {
	m.orderTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordLicense 记录授权发放或回收，operation 为 grant / revoke
func (m *MetricsCollector) RecordLicense(operation, productType string) {
	m.licenseOperationsTotal.WithLabelValues(operation, productType).Inc()
}

// RecordNotification 记录通知结果，outcome 为 sent / retry / dropped / skipped
func (m *MetricsCollector) RecordNotification(template, outcome string) {
	m.notificationsTotal.WithLabelValues(template, outcome).Inc()
}

// RecordCache 记录缓存命中
func (m *MetricsCollector) RecordCache(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequestsTotal.WithLabelValues(cache, result).Inc()
}

var (
	globalCollector *MetricsCollector
	globalOnce      sync.Once
)

// GetGlobalCollector 获取注册在默认 registry 上的全局指标收集器
func GetGlobalCollector() *MetricsCollector {
	globalOnce.Do(func() {
		globalCollector = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalCollector
}
