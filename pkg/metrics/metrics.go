package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics Prometheus 指标集合
// 使用独立 Registry，避免包级默认注册表在测试中重复注册的问题
type Metrics struct {
	registry *prometheus.Registry

	// ── HTTP 指标 ──
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// ── PM 引擎指标 ──
	PMWorkOrdersGenerated *prometheus.CounterVec
	PMPairsSkipped        *prometheus.CounterVec
	PMPairErrors          *prometheus.CounterVec
	PMRunDuration         *prometheus.HistogramVec
	PMComplianceGauge     *prometheus.GaugeVec
}

// NewMetrics 创建指标集合并注册到独立 Registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maintainpro_http_requests_total",
				Help: "HTTP 请求总数",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maintainpro_http_request_duration_seconds",
				Help:    "HTTP 请求耗时（秒）",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		PMWorkOrdersGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maintainpro_pm_work_orders_generated_total",
				Help: "PM 引擎生成的工单总数",
			},
			[]string{"warehouse_id"},
		),
		PMPairsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maintainpro_pm_pairs_skipped_total",
				Help: "PM 引擎按原因统计的跳过配对数",
			},
			[]string{"warehouse_id", "reason"},
		),
		PMPairErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maintainpro_pm_pair_errors_total",
				Help: "PM 引擎单配对处理失败数",
			},
			[]string{"warehouse_id"},
		),
		PMRunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maintainpro_pm_run_duration_seconds",
				Help:    "单次自动化运行耗时（秒）",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
			},
			[]string{"warehouse_id", "outcome"},
		),
		PMComplianceGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "maintainpro_pm_compliance_percentage",
				Help: "仓库级 PM 合规率（最近一次计算值）",
			},
			[]string{"warehouse_id"},
		),
	}
}

// Handler 返回 /metrics 的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
