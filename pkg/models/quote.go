// Package models defines the shared data types exchanged between the
// provider clients, the dashboard orchestrator, and the HTTP API.
package models

// Quote is the normalized result of a single provider fetch for one
// logical quantity (an FX rate, the gold spot, or an equity/index level).
// Price is always set on a successful quote; PreviousClose is nil when the
// provider has no previous-close figure (e.g. Alpha Vantage FX).
type Quote struct {
	Price         float64  `json:"price"`
	PreviousClose *float64 `json:"previousClose,omitempty"`
	ChangePercent float64  `json:"changePercent"`
	Source        string   `json:"source"`
}

// ChangePercentFrom derives a percent change from a previous close.
// Returns 0 when prev is zero.
func ChangePercentFrom(price, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (price - prev) / prev * 100
}

// Float64Ptr returns a pointer to v. Convenience for optional fields.
func Float64Ptr(v float64) *float64 { return &v }
