package entity

import "fmt"

const (
	DefaultLookbackDays      = 90
	DefaultCandidateLowerPct = 0.5
	DefaultCandidateUpperPct = 1.2
	DefaultCandidateSteps    = 50
)

// PricingParams controls one pricing computation.
type PricingParams struct {
	ClearanceDays     int     `json:"clearance_days"`
	MarginFloor       float64 `json:"margin_floor"`        // Minimum fractional markup over cost
	LookbackDays      int     `json:"lookback_days"`       // 0 means all history
	CandidateLowerPct float64 `json:"candidate_lower_pct"` // Grid lower bound as a fraction of the center price
	CandidateUpperPct float64 `json:"candidate_upper_pct"` // Grid upper bound as a fraction of the center price
	CandidateSteps    int     `json:"candidate_steps"`
}

// NewPricingParams returns params with the default lookback window and grid shape.
func NewPricingParams(clearanceDays int, marginFloor float64) PricingParams {
	return PricingParams{
		ClearanceDays:     clearanceDays,
		MarginFloor:       marginFloor,
		LookbackDays:      DefaultLookbackDays,
		CandidateLowerPct: DefaultCandidateLowerPct,
		CandidateUpperPct: DefaultCandidateUpperPct,
		CandidateSteps:    DefaultCandidateSteps,
	}
}

// MinAllowedPrice is the lowest price that still respects the margin floor.
func (p PricingParams) MinAllowedPrice(costPrice float64) float64 {
	return costPrice * (1 + p.MarginFloor)
}

// Signature identifies the params in cache keys.
func (p PricingParams) Signature() string {
	return fmt.Sprintf("c%d:m%g:l%d:lo%g:hi%g:s%d",
		p.ClearanceDays, p.MarginFloor, p.LookbackDays, p.CandidateLowerPct, p.CandidateUpperPct, p.CandidateSteps)
}

// PricingOverrides carries the optional request fields. Nil fields fall back to the configured defaults.
type PricingOverrides struct {
	ClearanceDays     *int     `json:"clearance_days"`
	MarginFloor       *float64 `json:"margin_floor"`
	LookbackDays      *int     `json:"lookback_days"`
	CandidateLowerPct *float64 `json:"candidate_lower_pct"`
	CandidateUpperPct *float64 `json:"candidate_upper_pct"`
	CandidateSteps    *int     `json:"candidate_steps"`
}
