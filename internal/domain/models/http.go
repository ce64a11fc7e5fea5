package models

// LadderRequest is the POST /api/ladder payload.
type LadderRequest struct {
	Asset           string   `json:"asset"`
	EntryPrice      float64  `json:"entry_price" validate:"required,gt=0"`
	StepPct         float64  `json:"step_pct" default:"10" validate:"gte=1,lte=50"`
	SellPctPerStep  float64  `json:"sell_pct_per_step" default:"10" validate:"gte=1,lte=50"`
	MaxSteps        int      `json:"max_steps" default:"8" validate:"gte=1,lte=30"`
	TrailingStopPct *float64 `json:"trailing_stop_pct" validate:"omitempty,gte=5,lte=50"`
}

// SignalsResponse pairs the derived signals with the raw snapshot they came
// from, so a consumer can tell a genuinely negative signal from one that is
// false only because its input was unavailable.
type SignalsResponse struct {
	Snapshot *MetricSnapshot `json:"snapshot"`
	Signals  *SignalSet      `json:"signals"`
}
