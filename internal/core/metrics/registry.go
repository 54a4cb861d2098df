package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry 持有本服务导出的全部 Prometheus 指标
type Registry struct {
	ClampedRecordsTotal    prometheus.Counter
	QueueSaturatedTotal    prometheus.Counter
	InvalidSlotNudgesTotal prometheus.Counter
	MalformedFramesTotal   prometheus.Counter
	ValidationFailedTotal  *prometheus.CounterVec
	SessionsReady          prometheus.Gauge
	SnapshotsSkippedTotal  prometheus.Counter
	TickDuration           prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry 创建一个全新的、已初始化全部指标的注册表
//
// 调用方负责在启动时构造一个实例并把它传给 Loop/Session/Hub/Server 的
// 构造函数；这里不提供进程级单例——生命周期由 main 显式拥有。
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	factory := promauto.With(reg)

	r.ClampedRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "graphstream_clamped_records_total",
		Help: "Number of decoded inbound frames in which at least one record's position or velocity required clamping (§7 OutOfRange)",
	})

	// Not labelled by session: session IDs are random UUIDs, so a per-session
	// label would grow without bound over a deployment's lifetime.
	r.QueueSaturatedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "graphstream_queue_saturated_total",
		Help: "Number of outbound enqueue attempts that hit a saturated session queue",
	})

	r.InvalidSlotNudgesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "graphstream_invalid_slot_nudges_total",
		Help: "Number of inbound nudges referencing an unknown slot (§7 InvalidSlot)",
	})

	r.MalformedFramesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "graphstream_malformed_frames_total",
		Help: "Number of binary frames rejected for a length not a multiple of 28 bytes",
	})

	r.ValidationFailedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "graphstream_validation_failed_total",
		Help: "Number of rejected configuration updates, by parameter",
	}, []string{"parameter"})

	r.SessionsReady = factory.NewGauge(prometheus.GaugeOpts{
		Name: "graphstream_sessions_ready",
		Help: "Number of sessions currently in the READY state",
	})

	r.SnapshotsSkippedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "graphstream_snapshots_skipped_total",
		Help: "Number of tick-boundary snapshots skipped because the kernel was slower than update_rate",
	})

	r.TickDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphstream_tick_duration_seconds",
		Help:    "Wall-clock duration of a single simulation tick",
		Buckets: prometheus.DefBuckets,
	})

	return r
}

// PrometheusRegistry 返回底层的 Prometheus 注册表，供 HTTP /metrics 端点使用
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}
