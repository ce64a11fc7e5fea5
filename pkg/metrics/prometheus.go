package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchTotal      *prometheus.CounterVec
	snapshotGaps    *prometheus.CounterVec
	dominance       prometheus.Gauge
	relativeRatio   prometheus.Gauge
	sentiment       prometheus.Gauge
	lastPrice       *prometheus.GaugeVec
	signalActive    *prometheus.GaugeVec
	confluenceCount prometheus.Gauge
	refreshLatency  prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bullrun_fetch_attempts_total",
				Help: "Upstream fetch attempts by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		snapshotGaps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bullrun_snapshot_gaps_total",
				Help: "Refresh cycles that left a source absent from the snapshot",
			},
			[]string{"source"},
		),
		dominance: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bullrun_dominance_pct",
				Help: "Last observed dominant-asset market cap share",
			},
		),
		relativeRatio: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bullrun_relative_ratio",
				Help: "Last observed secondary/primary price ratio",
			},
		),
		sentiment: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bullrun_sentiment_index",
				Help: "Last observed fear & greed index value",
			},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bullrun_last_price_usd",
				Help: "Last recorded USD price for an asset",
			},
			[]string{"asset"},
		),
		signalActive: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bullrun_signal_active",
				Help: "Signal state from the latest evaluation (1 active, 0 inactive)",
			},
			[]string{"signal"},
		),
		confluenceCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bullrun_confluence_count",
				Help: "Number of simultaneously active risk signals",
			},
		),
		refreshLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bullrun_refresh_duration_seconds",
				Help:    "Duration of a full snapshot refresh",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordFetch records a fetch attempt outcome for a source.
func (r *Recorder) RecordFetch(source, outcome string) {
	r.fetchTotal.WithLabelValues(source, outcome).Inc()
}

// RecordGap records that a refresh left a source unavailable.
func (r *Recorder) RecordGap(source string) {
	r.snapshotGaps.WithLabelValues(source).Inc()
}

// RecordDominance records the dominance percentage.
func (r *Recorder) RecordDominance(pct float64) {
	r.dominance.Set(pct)
}

// RecordRatio records the cross-asset price ratio.
func (r *Recorder) RecordRatio(ratio float64) {
	r.relativeRatio.Set(ratio)
}

// RecordSentiment records the sentiment index value.
func (r *Recorder) RecordSentiment(value int) {
	r.sentiment.Set(float64(value))
}

// RecordLastPrice records the last USD price for an asset.
func (r *Recorder) RecordLastPrice(asset string, price float64) {
	r.lastPrice.WithLabelValues(asset).Set(price)
}

// RecordSignal records a signal's state.
func (r *Recorder) RecordSignal(name string, active bool) {
	v := 0.0
	if active {
		v = 1.0
	}
	r.signalActive.WithLabelValues(name).Set(v)
}

// RecordConfluence records the confluence count.
func (r *Recorder) RecordConfluence(count int) {
	r.confluenceCount.Set(float64(count))
}

// RecordRefreshDuration records a refresh cycle duration in seconds.
func (r *Recorder) RecordRefreshDuration(seconds float64) {
	r.refreshLatency.Observe(seconds)
}
