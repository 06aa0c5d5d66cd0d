// Package metrics provides Prometheus metrics for the pick pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// ScanMetrics collects and exposes scan-related Prometheus metrics.
type ScanMetrics struct {
	registry *prometheus.Registry

	// Scan metrics
	ScansTotal    *prometheus.CounterVec
	ScanDuration  *prometheus.HistogramVec
	StageDuration *prometheus.HistogramVec

	// Source metrics
	SourceFetches  *prometheus.CounterVec
	SourceDuration *prometheus.HistogramVec

	// Selection metrics
	Exclusions *prometheus.CounterVec
	Picks      *prometheus.CounterVec
	PickEdge   *prometheus.HistogramVec
	Coverage   *prometheus.GaugeVec

	// Rationale metrics
	Rationale *prometheus.CounterVec
}

// NewScanMetrics creates a new collector on its own registry.
func NewScanMetrics() *ScanMetrics {
	registry := prometheus.NewRegistry()

	sm := &ScanMetrics{
		registry: registry,

		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pronoai_scans_total",
				Help: "Total number of scans by outcome mode",
			},
			[]string{"mode"},
		),
		ScanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pronoai_scan_duration_seconds",
				Help:    "End to end scan duration",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
			},
			[]string{},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pronoai_stage_duration_seconds",
				Help:    "Duration of each scan stage",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"stage"},
		),

		SourceFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pronoai_source_fetches_total",
				Help: "Fixture source requests by status",
			},
			[]string{"source", "status"},
		),
		SourceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pronoai_source_fetch_seconds",
				Help:    "Fixture source request latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"source"},
		),

		Exclusions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pronoai_exclusions_total",
				Help: "Fixtures dropped by sport and stage",
			},
			[]string{"sport", "stage"},
		),
		Picks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pronoai_picks_total",
				Help: "Published picks by sport and source",
			},
			[]string{"sport", "source"},
		),
		PickEdge: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pronoai_pick_edge_bps",
				Help:    "Edge of live picks in basis points",
				Buckets: []float64{0, 500, 800, 1000, 1500, 2000, 3000, 5000},
			},
			[]string{"sport"},
		),
		Coverage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pronoai_coverage_ratio",
				Help: "Qualified candidates over confirmed fixtures in the last scan",
			},
			[]string{"sport"},
		),

		Rationale: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pronoai_rationale_total",
				Help: "Rationale enrichment attempts by status",
			},
			[]string{"status"},
		),
	}

	sm.registerAll()

	return sm
}

func (sm *ScanMetrics) registerAll() {
	sm.registry.MustRegister(
		sm.ScansTotal,
		sm.ScanDuration,
		sm.StageDuration,
		sm.SourceFetches,
		sm.SourceDuration,
		sm.Exclusions,
		sm.Picks,
		sm.PickEdge,
		sm.Coverage,
		sm.Rationale,
	)
}

// Registry returns the prometheus registry.
func (sm *ScanMetrics) Registry() *prometheus.Registry {
	return sm.registry
}

// --- Helper methods for recording metrics ---

// RecordScan records a completed scan.
func (sm *ScanMetrics) RecordScan(mode string, durationSec float64) {
	sm.ScansTotal.WithLabelValues(mode).Inc()
	if durationSec > 0 {
		sm.ScanDuration.WithLabelValues().Observe(durationSec)
	}
}

// RecordStage records a stage execution.
func (sm *ScanMetrics) RecordStage(stage string, durationSec float64) {
	sm.StageDuration.WithLabelValues(stage).Observe(durationSec)
}

// RecordFetch records one source request.
func (sm *ScanMetrics) RecordFetch(source, status string, durationSec float64) {
	sm.SourceFetches.WithLabelValues(source, status).Inc()
	if durationSec > 0 {
		sm.SourceDuration.WithLabelValues(source).Observe(durationSec)
	}
}

// RecordExclusion records a dropped fixture.
func (sm *ScanMetrics) RecordExclusion(sport, stage string) {
	sm.Exclusions.WithLabelValues(sport, stage).Inc()
}

// RecordPick records a published pick.
func (sm *ScanMetrics) RecordPick(sport, source string) {
	sm.Picks.WithLabelValues(sport, source).Inc()
}

// RecordEdge records the edge of a live pick.
func (sm *ScanMetrics) RecordEdge(sport string, edgeBps decimal.Decimal) {
	sm.PickEdge.WithLabelValues(sport).Observe(DecimalToFloat64(edgeBps))
}

// UpdateCoverage sets the coverage ratio of a sport.
func (sm *ScanMetrics) UpdateCoverage(sport string, ratio float64) {
	sm.Coverage.WithLabelValues(sport).Set(ratio)
}

// RecordRationale records an enrichment attempt.
func (sm *ScanMetrics) RecordRationale(status string) {
	sm.Rationale.WithLabelValues(status).Inc()
}

// --- Decimal helpers ---

// DecimalToFloat64 safely converts decimal.Decimal to float64 for metrics.
func DecimalToFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
