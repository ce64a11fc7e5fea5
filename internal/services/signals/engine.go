package signals

import (
	"time"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
)

// Engine derives the named signal set from a snapshot. Evaluation is a pure
// function of its inputs: no state survives between calls and an absent
// input always degrades the dependent signal to false. Callers should note
// that degraded snapshots therefore read as lower confluence, never as an
// error.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate maps one snapshot plus thresholds to a SignalSet.
func (e *Engine) Evaluate(snapshot *models.MetricSnapshot, cfg models.ThresholdConfig) models.SignalSet {
	set := models.SignalSet{Timestamp: time.Now().UTC()}
	if snapshot == nil {
		set.ConfluenceLevel = levelFor(0, cfg)
		return set
	}
	if snapshot.Timestamp != (time.Time{}) {
		set.Timestamp = snapshot.Timestamp
	}

	if dom := snapshot.DominancePct; dom != nil {
		set.DominanceBelowFirst = *dom < cfg.DominanceBreak1
		set.DominanceBelowSecond = *dom < cfg.DominanceBreak2
	}
	if ratio := snapshot.RelativeRatio; ratio != nil {
		set.RatioBreakout = *ratio > cfg.RatioBreakoutLevel
	}
	if idx := snapshot.SentimentIndex; idx != nil {
		set.SentimentExtreme = *idx >= cfg.SentimentHigh
	}
	if rsi := snapshot.Technical(models.TechnicalRSI).Value; rsi != nil {
		set.TechnicalOverbought = *rsi > cfg.TechnicalOverbought
	}
	set.TechnicalDivergence = isActive(snapshot.Technical(models.TechnicalMACDDivergence))
	set.VolumeDivergence = isActive(snapshot.Technical(models.TechnicalVolumeDivergence))

	set.RotateToAlts = set.DominanceBelowFirst && set.RatioBreakout
	set.ProfitMode = set.DominanceBelowSecond ||
		set.SentimentExtreme ||
		set.TechnicalOverbought ||
		set.TechnicalDivergence ||
		set.VolumeDivergence
	set.FullExitWatch = set.DominanceBelowSecond && set.SentimentExtreme

	states := set.Map()
	for _, name := range models.ConfluenceSignals() {
		if states[name] {
			set.ConfluenceCount++
		}
	}
	set.ConfluenceLevel = levelFor(set.ConfluenceCount, cfg)
	return set
}

func isActive(r models.TechnicalReading) bool {
	return r.Active != nil && *r.Active
}

func levelFor(count int, cfg models.ThresholdConfig) models.ConfluenceLevel {
	switch {
	case count >= cfg.ConfluenceHigh:
		return models.ConfluenceHigh
	case count >= cfg.ConfluenceModerate:
		return models.ConfluenceModerate
	default:
		return models.ConfluenceLow
	}
}
