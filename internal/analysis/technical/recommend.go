package technical

import "github.com/daehw/wondash/pkg/models"

const (
	minCandles       = 50
	recentHighWindow = 20
)

// Recommend classifies a weekly candle series into one of the five
// recommendation tiers. currentPrice, when non-nil, replaces the last
// close as the price being classified (the candles are weekly, the
// quote is live). Fewer than 50 candles yields neutral with no details.
//
// The rules are checked in order, first match wins:
//
//	price below SMA40                          -> strong_sell
//	price below SMA10, or a MACD dead cross    -> sell
//	price above the recent high with MACD > 0  -> strong_buy
//	price above SMA10 > SMA40 with RSI < 70    -> buy
//	otherwise                                  -> neutral
func Recommend(candles []models.Candle, currentPrice *float64) models.Recommendation {
	if len(candles) < minCandles {
		return models.NewRecommendation(models.TierNeutral, nil)
	}

	closes := models.Closes(candles)
	price := closes[len(closes)-1]
	if currentPrice != nil {
		price = *currentPrice
	}

	sma10 := SMALatest(closes, 10)
	sma40 := SMALatest(closes, 40)
	rsi := RSILatest(closes, 14)
	recentHigh := RecentHigh(closes, recentHighWindow)

	macd := MACD(closes, 12, 26, 9)
	cur := macd[len(macd)-1]
	prev := macd[len(macd)-2]
	deadCross := prev.MACD >= prev.Signal && cur.MACD < cur.Signal

	details := &models.IndicatorDetails{
		SMAStatus:  smaStatus(price, sma10, sma40),
		MACDStatus: macdStatus(prev, cur),
		RSIStatus:  rsiStatus(rsi),
		SMA10:      round2(sma10),
		SMA40:      round2(sma40),
		RSI:        round2(rsi),
		MACD:       round2(cur.MACD),
		Signal:     round2(cur.Signal),
		Histogram:  round2(cur.Histogram),
		RecentHigh: round2(recentHigh),
	}

	var tier models.Tier
	switch {
	case price < sma40:
		tier = models.TierStrongSell
	case price < sma10 || deadCross:
		tier = models.TierSell
	case price > recentHigh && cur.MACD > 0:
		tier = models.TierStrongBuy
	case price > sma10 && sma10 > sma40 && rsi < 70:
		tier = models.TierBuy
	default:
		tier = models.TierNeutral
	}

	return models.NewRecommendation(tier, details)
}

func smaStatus(price, sma10, sma40 float64) string {
	switch {
	case price > sma10 && sma10 > sma40:
		return "정배열 (상승 추세)"
	case price < sma40:
		return "역배열 (하락 추세)"
	default:
		return "혼조"
	}
}

func macdStatus(prev, cur MACDResult) string {
	switch {
	case prev.MACD >= prev.Signal && cur.MACD < cur.Signal:
		return "데드크로스 발생"
	case prev.MACD <= prev.Signal && cur.MACD > cur.Signal:
		return "골든크로스 발생"
	case cur.MACD > cur.Signal:
		return "상승 모멘텀"
	default:
		return "하락 모멘텀"
	}
}

func rsiStatus(rsi float64) string {
	switch {
	case rsi >= 70:
		return "좋음 (과열)"
	case rsi >= 55:
		return "매우 좋음"
	case rsi >= 45:
		return "좋음"
	case rsi >= 40:
		return "보통"
	case rsi >= 30:
		return "나쁨"
	default:
		return "매우 나쁨"
	}
}
