package models

// AltQuote is one row of the top-cap altcoin scan.
type AltQuote struct {
	Rank         int      `json:"rank"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	PriceUSD     float64  `json:"price_usd"`
	Change24h    *float64 `json:"change_24h,omitempty"`
	Change7d     *float64 `json:"change_7d,omitempty"`
	Change30d    *float64 `json:"change_30d,omitempty"`
	MarketCapUSD float64  `json:"market_cap_usd"`
}

// RotationAdvice is the altcoin-rotation recommendation. Active mirrors the
// rotate_to_alts signal; Candidates is the top-cap scan excluding the
// primary and secondary assets.
type RotationAdvice struct {
	Active                 bool       `json:"active"`
	TargetAltAllocationPct float64    `json:"target_alt_allocation_pct"`
	Candidates             []AltQuote `json:"candidates"`
}
