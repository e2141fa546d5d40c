package technical

import (
	"math"
	"reflect"
	"testing"

	"github.com/daehw/wondash/pkg/models"
)

func makeCandles(closes []float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{Close: c, Open: c, High: c, Low: c}
	}
	return candles
}

func TestSMA(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	vals := SMA(data, 3)
	if vals == nil {
		t.Fatal("expected values")
	}
	// Windows: [1,2,3]=2, [2,3,4]=3, [3,4,5]=4.
	if vals[2] != 2 || vals[3] != 3 || vals[4] != 4 {
		t.Errorf("SMA = %v", vals)
	}
	if SMALatest(data, 3) != 4 {
		t.Errorf("SMALatest = %v", SMALatest(data, 3))
	}
}

func TestSMAInsufficientData(t *testing.T) {
	if vals := SMA([]float64{1, 2}, 3); vals != nil {
		t.Errorf("expected nil, got %v", vals)
	}
}

func TestEMASeededFromFirstPoint(t *testing.T) {
	// period 3 -> k = 0.5; seed is the first sample, not an SMA window.
	vals := EMA([]float64{10, 20}, 3)
	if vals[0] != 10 {
		t.Errorf("seed = %v, want first data point", vals[0])
	}
	if vals[1] != 15 {
		t.Errorf("ema[1] = %v, want 15", vals[1])
	}
}

func TestRSIAllGains(t *testing.T) {
	data := make([]float64, 30)
	for i := range data {
		data[i] = float64(100 + i)
	}
	if rsi := RSILatest(data, 14); rsi != 100 {
		t.Errorf("RSI of monotone gains = %v, want 100", rsi)
	}
}

func TestRSIBounds(t *testing.T) {
	data := make([]float64, 120)
	for i := range data {
		// Deterministic wobble around 100.
		data[i] = 100 + 10*math.Sin(float64(i)*0.7) + float64(i%5)
	}
	for i, v := range RSI(data, 14) {
		if v < 0 || v > 100 {
			t.Errorf("RSI[%d] = %v out of [0,100]", i, v)
		}
	}
}

func TestMACDHistogram(t *testing.T) {
	data := make([]float64, 60)
	for i := range data {
		data[i] = 100 + float64(i)
	}
	results := MACD(data, 12, 26, 9)
	if len(results) != len(data) {
		t.Fatalf("got %d results", len(results))
	}
	last := results[len(results)-1]
	if got := last.MACD - last.Signal; math.Abs(got-last.Histogram) > 1e-12 {
		t.Errorf("histogram = %v, want MACD-signal = %v", last.Histogram, got)
	}
	// Steady uptrend keeps the fast EMA above the slow one.
	if last.MACD <= 0 {
		t.Errorf("MACD = %v, want > 0 in an uptrend", last.MACD)
	}
}

func TestRecentHighExcludesLast(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 99}
	// Window of 20 preceding the final 99: values 2..21.
	if high := RecentHigh(data, 20); high != 21 {
		t.Errorf("recent high = %v, want 21", high)
	}
}

func TestRecommendTooFewCandles(t *testing.T) {
	closes := make([]float64, 49)
	for i := range closes {
		closes[i] = 100
	}
	rec := Recommend(makeCandles(closes), nil)
	if rec.ID != "neutral" {
		t.Errorf("tier = %s, want neutral", rec.ID)
	}
	if rec.Details != nil {
		t.Error("expected no details on short history")
	}
}

func TestRecommendStrongBuyOnBreakout(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rec := Recommend(makeCandles(closes), nil)
	if rec.ID != "strong_buy" {
		t.Errorf("tier = %s, want strong_buy", rec.ID)
	}
	if rec.Details == nil {
		t.Fatal("expected details")
	}
	if rec.Details.SMAStatus == "" || rec.Details.RSIStatus == "" {
		t.Errorf("details missing statuses: %+v", rec.Details)
	}
}

func TestRecommendStrongSellBelowSMA40(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 200 - float64(i)*2
	}
	rec := Recommend(makeCandles(closes), nil)
	if rec.ID != "strong_sell" {
		t.Errorf("tier = %s, want strong_sell", rec.ID)
	}
}

func TestRecommendCurrentPriceOverridesLastClose(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	// The series is a breakout, but the live quote has cratered.
	live := 10.0
	rec := Recommend(makeCandles(closes), &live)
	if rec.ID != "strong_sell" {
		t.Errorf("tier = %s, want strong_sell from live price", rec.ID)
	}
}

func TestRecommendDeterministic(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)*0.3) + float64(i)*0.2
	}
	candles := makeCandles(closes)

	first := Recommend(candles, nil)
	for i := 0; i < 5; i++ {
		if got := Recommend(candles, nil); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestRSIStatusBands(t *testing.T) {
	cases := []struct {
		rsi  float64
		want string
	}{
		{75, "좋음 (과열)"},
		{60, "매우 좋음"},
		{50, "좋음"},
		{42, "보통"},
		{35, "나쁨"},
		{20, "매우 나쁨"},
	}
	for _, tc := range cases {
		if got := rsiStatus(tc.rsi); got != tc.want {
			t.Errorf("rsiStatus(%v) = %q, want %q", tc.rsi, got, tc.want)
		}
	}
}
