package models

import "time"

// ConfluenceLevel buckets the confluence count.
type ConfluenceLevel string

const (
	ConfluenceLow      ConfluenceLevel = "low"
	ConfluenceModerate ConfluenceLevel = "moderate"
	ConfluenceHigh     ConfluenceLevel = "high"
)

// Signal names. This set is the versioned schema consumers rely on; new
// signals are additions, never renames.
const (
	SignalDominanceBelowFirst  = "dominance_below_first"
	SignalDominanceBelowSecond = "dominance_below_second"
	SignalRatioBreakout        = "ratio_breakout"
	SignalSentimentExtreme     = "sentiment_extreme"
	SignalTechnicalOverbought  = "technical_overbought"
	SignalTechnicalDivergence  = "technical_divergence"
	SignalVolumeDivergence     = "volume_divergence"
	SignalRotateToAlts         = "rotate_to_alts"
	SignalProfitMode           = "profit_mode"
	SignalFullExitWatch        = "full_exit_watch"
)

// ThresholdConfig holds the user-supplied trigger levels. Immutable for a
// session. The two dominance breaks are compared independently; no ordering
// between them is assumed.
type ThresholdConfig struct {
	DominanceBreak1     float64 `json:"dominance_break_1"`
	DominanceBreak2     float64 `json:"dominance_break_2"`
	RatioBreakoutLevel  float64 `json:"ratio_breakout_level"`
	SentimentHigh       int     `json:"sentiment_high"`
	TechnicalOverbought float64 `json:"technical_overbought"`
	ConfluenceModerate  int     `json:"confluence_moderate"`
	ConfluenceHigh      int     `json:"confluence_high"`
}

// SignalSet is the engine output for one snapshot. Immutable.
type SignalSet struct {
	Timestamp time.Time `json:"timestamp"`

	DominanceBelowFirst  bool `json:"dominance_below_first"`
	DominanceBelowSecond bool `json:"dominance_below_second"`
	RatioBreakout        bool `json:"ratio_breakout"`
	SentimentExtreme     bool `json:"sentiment_extreme"`
	TechnicalOverbought  bool `json:"technical_overbought"`
	TechnicalDivergence  bool `json:"technical_divergence"`
	VolumeDivergence     bool `json:"volume_divergence"`

	RotateToAlts  bool `json:"rotate_to_alts"`
	ProfitMode    bool `json:"profit_mode"`
	FullExitWatch bool `json:"full_exit_watch"`

	ConfluenceCount int             `json:"confluence_count"`
	ConfluenceLevel ConfluenceLevel `json:"confluence_level"`
}

// Map returns the fixed name-to-state schema. The key set never varies with
// the data, so consumers cannot silently drift.
func (s SignalSet) Map() map[string]bool {
	return map[string]bool{
		SignalDominanceBelowFirst:  s.DominanceBelowFirst,
		SignalDominanceBelowSecond: s.DominanceBelowSecond,
		SignalRatioBreakout:        s.RatioBreakout,
		SignalSentimentExtreme:     s.SentimentExtreme,
		SignalTechnicalOverbought:  s.TechnicalOverbought,
		SignalTechnicalDivergence:  s.TechnicalDivergence,
		SignalVolumeDivergence:     s.VolumeDivergence,
		SignalRotateToAlts:         s.RotateToAlts,
		SignalProfitMode:           s.ProfitMode,
		SignalFullExitWatch:        s.FullExitWatch,
	}
}

// ConfluenceSignals lists the atomic risk/exit signals counted toward the
// confluence score. Composites are excluded so one underlying condition is
// never counted twice. The enumeration is fixed, not inferred.
func ConfluenceSignals() []string {
	return []string{
		SignalDominanceBelowFirst,
		SignalDominanceBelowSecond,
		SignalRatioBreakout,
		SignalSentimentExtreme,
		SignalTechnicalOverbought,
		SignalTechnicalDivergence,
		SignalVolumeDivergence,
	}
}
