package models

import "time"

// Source identifiers used as snapshot error keys and cache/metric labels.
const (
	SourceGlobal    = "global"
	SourceRatio     = "ratio"
	SourcePrices    = "prices"
	SourceSentiment = "sentiment"
	SourceMarkets   = "markets"
	SourceTechnical = "technical"
)

// Technical reading names.
const (
	TechnicalRSI              = "rsi"
	TechnicalMACDDivergence   = "macd_divergence"
	TechnicalVolumeDivergence = "volume_divergence"
)

// TechnicalReading is one externally supplied technical input. Numeric
// readings (RSI) carry Value; boolean readings (divergence flags) carry
// Active. A zero reading means the input is absent.
type TechnicalReading struct {
	Value  *float64 `json:"value,omitempty"`
	Active *bool    `json:"active,omitempty"`
}

// MetricSnapshot bundles every raw input of one refresh cycle. Each field is
// independently nullable: an upstream failure leaves the field nil and adds
// an entry to Errors so consumers can tell "condition unmet" apart from
// "input unavailable". Snapshots are never mutated; the next refresh
// supersedes them wholesale.
type MetricSnapshot struct {
	Timestamp      time.Time                   `json:"timestamp"`
	DominancePct   *float64                    `json:"dominance_pct,omitempty"`
	RelativeRatio  *float64                    `json:"relative_ratio,omitempty"`
	SentimentIndex *int                        `json:"sentiment_index,omitempty"`
	SentimentLabel *string                     `json:"sentiment_label,omitempty"`
	SpotPrices     map[string]*float64         `json:"spot_prices"`
	TechnicalFlags map[string]TechnicalReading `json:"technical_flags"`
	Errors         map[string]string           `json:"errors,omitempty"`
}

// SpotPrice returns the USD price for asset, or nil when unavailable.
func (s *MetricSnapshot) SpotPrice(asset string) *float64 {
	if s == nil || s.SpotPrices == nil {
		return nil
	}
	return s.SpotPrices[asset]
}

// Technical returns the named reading; absent keys yield a zero reading.
func (s *MetricSnapshot) Technical(name string) TechnicalReading {
	if s == nil || s.TechnicalFlags == nil {
		return TechnicalReading{}
	}
	return s.TechnicalFlags[name]
}

// Degraded reports whether any source failed during this refresh.
func (s *MetricSnapshot) Degraded() bool {
	return s != nil && len(s.Errors) > 0
}
