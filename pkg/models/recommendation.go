package models

// Tier is one of the five recommendation levels.
type Tier string

const (
	TierStrongBuy  Tier = "strong_buy"
	TierBuy        Tier = "buy"
	TierNeutral    Tier = "neutral"
	TierSell       Tier = "sell"
	TierStrongSell Tier = "strong_sell"
)

// TierInfo carries the display metadata for a recommendation tier.
type TierInfo struct {
	ID      Tier   `json:"id"`
	Label   string `json:"label"`
	LabelEn string `json:"labelEn"`
	Color   string `json:"color"`
	BgColor string `json:"bgColor"`
	Icon    string `json:"icon"`
}

// Tiers maps each tier to its display metadata.
var Tiers = map[Tier]TierInfo{
	TierStrongBuy: {
		ID: TierStrongBuy, Label: "강력추천", LabelEn: "Strong Buy",
		Color: "#10b981", BgColor: "rgba(16, 185, 129, 0.15)", Icon: "🚀",
	},
	TierBuy: {
		ID: TierBuy, Label: "추천", LabelEn: "Buy",
		Color: "#38bdf8", BgColor: "rgba(56, 189, 248, 0.15)", Icon: "📈",
	},
	TierNeutral: {
		ID: TierNeutral, Label: "보통", LabelEn: "Neutral",
		Color: "#94a3b8", BgColor: "rgba(148, 163, 184, 0.15)", Icon: "➡️",
	},
	TierSell: {
		ID: TierSell, Label: "비추천", LabelEn: "Sell",
		Color: "#fb923c", BgColor: "rgba(251, 146, 60, 0.15)", Icon: "📉",
	},
	TierStrongSell: {
		ID: TierStrongSell, Label: "강력비추천", LabelEn: "Strong Sell",
		Color: "#ef4444", BgColor: "rgba(239, 68, 68, 0.15)", Icon: "⚠️",
	},
}

// IndicatorDetails holds the qualitative status strings and the rounded
// numeric values behind a recommendation computed from real candle data.
type IndicatorDetails struct {
	SMAStatus  string  `json:"smaStatus"`
	MACDStatus string  `json:"macdStatus"`
	RSIStatus  string  `json:"rsiStatus"`
	SMA10      float64 `json:"sma10"`
	SMA40      float64 `json:"sma40"`
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd"`
	Signal     float64 `json:"signal"`
	Histogram  float64 `json:"histogram"`
	RecentHigh float64 `json:"recentHigh"`
}

// Recommendation is a tier plus its display metadata and, when computed
// from at least 50 weekly candles, the per-indicator details.
type Recommendation struct {
	TierInfo
	Details *IndicatorDetails `json:"details,omitempty"`
}

// NewRecommendation builds a Recommendation for the given tier.
// Unknown tiers fall back to neutral.
func NewRecommendation(tier Tier, details *IndicatorDetails) Recommendation {
	info, ok := Tiers[tier]
	if !ok {
		info = Tiers[TierNeutral]
	}
	return Recommendation{TierInfo: info, Details: details}
}
