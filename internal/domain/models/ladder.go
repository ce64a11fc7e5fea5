package models

// LadderConfig parameterizes a take-profit ladder.
type LadderConfig struct {
	EntryPrice      float64  `json:"entry_price"`
	StepPct         float64  `json:"step_pct"`
	SellPctPerStep  float64  `json:"sell_pct_per_step"`
	MaxSteps        int      `json:"max_steps"`
	TrailingStopPct *float64 `json:"trailing_stop_pct,omitempty"`
}

// LadderStep is one rung: sell SellPct of the original position when the
// price reaches TargetPrice.
type LadderStep struct {
	Step        int     `json:"step"`
	TargetPrice float64 `json:"target_price"`
	GainPct     float64 `json:"gain_pct"`
	SellPct     float64 `json:"sell_pct"`
}

// LadderPlan is the full schedule for one asset. SellPct is constant per
// rung and applies to the original position, so CumulativeSellPct can
// exceed 100; that input is accepted and surfaced via Oversubscribed rather
// than rejected.
type LadderPlan struct {
	Asset             string       `json:"asset,omitempty"`
	EntryPrice        float64      `json:"entry_price"`
	Steps             []LadderStep `json:"steps"`
	CumulativeSellPct float64      `json:"cumulative_sell_pct"`
	Oversubscribed    bool         `json:"oversubscribed"`
	TrailingStop      *float64     `json:"trailing_stop,omitempty"`
}
