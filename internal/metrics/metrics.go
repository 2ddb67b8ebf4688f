// Package metrics provides Prometheus metrics for vecdb.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for vecdb.
type Metrics struct {
	// Region-store metrics
	RegionOperationsTotal   *prometheus.CounterVec
	RegionOperationDuration *prometheus.HistogramVec
	RegionGrowthsTotal      *prometheus.CounterVec
	RegionRelocationsTotal  prometheus.Counter
	HolePunchesTotal        *prometheus.CounterVec
	FreeListBytes           prometheus.Gauge
	FreeListHoles           prometheus.Gauge

	// Database metrics
	DbSizeBytes      prometheus.Gauge
	DbRegionsTotal   prometheus.Gauge
	DbFlushesTotal   prometheus.Counter
	DbFlushDuration  prometheus.Histogram

	// Vector operation metrics
	VectorPushesTotal    *prometheus.CounterVec
	VectorReadsTotal     *prometheus.CounterVec
	VectorWritesTotal    *prometheus.CounterVec
	VectorRollbacksTotal prometheus.Counter

	// Compression metrics
	PageCompressionsTotal  *prometheus.CounterVec
	PageDecompressionsTotal *prometheus.CounterVec
	CompressionRatio        *prometheus.HistogramVec

	// Process metrics
	UptimeSeconds prometheus.Gauge
	StartTime     time.Time
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		StartTime: time.Now(),
	}

	m.RegionOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecdb_region_operations_total",
			Help: "Total number of region-store operations",
		},
		[]string{"operation", "status"},
	)

	m.RegionOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vecdb_region_operation_duration_seconds",
			Help:    "Duration of region-store operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	m.RegionGrowthsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecdb_region_growths_total",
			Help: "Total number of region growth operations, by strategy",
		},
		[]string{"strategy"}, // extend_tail, extend_hole, relocate
	)

	m.RegionRelocationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vecdb_region_relocations_total",
			Help: "Total number of region relocations during growth",
		},
	)

	m.HolePunchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecdb_hole_punches_total",
			Help: "Total number of filesystem hole-punch attempts, by outcome",
		},
		[]string{"outcome"}, // ok, unsupported, failed
	)

	m.FreeListBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vecdb_free_list_bytes",
			Help: "Total bytes currently reclaimable from the free-hole list",
		},
	)

	m.FreeListHoles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vecdb_free_list_holes",
			Help: "Current number of holes tracked in the free-hole list",
		},
	)

	m.DbSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vecdb_db_size_bytes",
			Help: "Current data file size in bytes",
		},
	)

	m.DbRegionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vecdb_db_regions_total",
			Help: "Total number of live regions in the database",
		},
	)

	m.DbFlushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vecdb_db_flushes_total",
			Help: "Total number of database flush operations",
		},
	)

	m.DbFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vecdb_db_flush_duration_seconds",
			Help:    "Duration of database flush operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.VectorPushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecdb_vector_pushes_total",
			Help: "Total number of vector push operations, by vector name",
		},
		[]string{"vector"},
	)

	m.VectorReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecdb_vector_reads_total",
			Help: "Total number of vector read operations, by vector name",
		},
		[]string{"vector"},
	)

	m.VectorWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecdb_vector_writes_total",
			Help: "Total number of vector write (flush-to-region) operations, by vector name",
		},
		[]string{"vector"},
	)

	m.VectorRollbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vecdb_vector_rollbacks_total",
			Help: "Total number of vector rollback_to operations",
		},
	)

	m.PageCompressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecdb_page_compressions_total",
			Help: "Total number of compressed-vector page compressions, by strategy",
		},
		[]string{"strategy"}, // pco, lz4, zstd
	)

	m.PageDecompressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vecdb_page_decompressions_total",
			Help: "Total number of compressed-vector page decompressions, by strategy and status",
		},
		[]string{"strategy", "status"},
	)

	m.CompressionRatio = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vecdb_compression_ratio",
			Help:    "Ratio of compressed bytes to uncompressed bytes per page, by strategy",
			Buckets: []float64{.05, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
		[]string{"strategy"},
	)

	m.UptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vecdb_process_uptime_seconds",
			Help: "Process uptime in seconds",
		},
	)

	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.UptimeSeconds.Set(time.Since(m.StartTime).Seconds())
	}
}

// RecordRegionOperation records a region-store operation with its status.
func (m *Metrics) RecordRegionOperation(operation, status string, duration time.Duration) {
	m.RegionOperationsTotal.WithLabelValues(operation, status).Inc()
	m.RegionOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRegionGrowth records a region growth by the strategy that serviced it.
func (m *Metrics) RecordRegionGrowth(strategy string, relocated bool) {
	m.RegionGrowthsTotal.WithLabelValues(strategy).Inc()
	if relocated {
		m.RegionRelocationsTotal.Inc()
	}
}

// RecordHolePunch records a hole-punch attempt outcome.
func (m *Metrics) RecordHolePunch(outcome string) {
	m.HolePunchesTotal.WithLabelValues(outcome).Inc()
}

// UpdateDbStats updates database-wide gauges.
func (m *Metrics) UpdateDbStats(sizeBytes int64, regionCount int, freeBytes int64, freeHoles int) {
	m.DbSizeBytes.Set(float64(sizeBytes))
	m.DbRegionsTotal.Set(float64(regionCount))
	m.FreeListBytes.Set(float64(freeBytes))
	m.FreeListHoles.Set(float64(freeHoles))
}

// RecordFlush records a completed database flush.
func (m *Metrics) RecordFlush(duration time.Duration) {
	m.DbFlushesTotal.Inc()
	m.DbFlushDuration.Observe(duration.Seconds())
}

// RecordVectorPush records a push onto the named vector.
func (m *Metrics) RecordVectorPush(vecName string) {
	m.VectorPushesTotal.WithLabelValues(vecName).Inc()
}

// RecordVectorRead records a read from the named vector.
func (m *Metrics) RecordVectorRead(vecName string) {
	m.VectorReadsTotal.WithLabelValues(vecName).Inc()
}

// RecordVectorWrite records a write() call against the named vector.
func (m *Metrics) RecordVectorWrite(vecName string) {
	m.VectorWritesTotal.WithLabelValues(vecName).Inc()
}

// RecordVectorRollback records a rollback_to call.
func (m *Metrics) RecordVectorRollback() {
	m.VectorRollbacksTotal.Inc()
}

// RecordPageCompression records a page compression and its achieved ratio.
func (m *Metrics) RecordPageCompression(strategy string, uncompressedBytes, compressedBytes int) {
	m.PageCompressionsTotal.WithLabelValues(strategy).Inc()
	if uncompressedBytes > 0 {
		ratio := float64(compressedBytes) / float64(uncompressedBytes)
		m.CompressionRatio.WithLabelValues(strategy).Observe(ratio)
	}
}

// RecordPageDecompression records a page decompression attempt and outcome.
func (m *Metrics) RecordPageDecompression(strategy, status string) {
	m.PageDecompressionsTotal.WithLabelValues(strategy, status).Inc()
}
