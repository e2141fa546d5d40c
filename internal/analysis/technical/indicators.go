// Package technical implements the weekly-candle indicator engine behind
// the dashboard's five-tier recommendation. All functions are pure and
// deterministic over their inputs.
package technical

import "math"

// SMA calculates the Simple Moving Average series for the given period.
// Entries before the first full window are zero.
func SMA(data []float64, period int) []float64 {
	n := len(data)
	if n < period || period <= 0 {
		return nil
	}

	result := make([]float64, n)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	result[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		sum += data[i] - data[i-period]
		result[i] = sum / float64(period)
	}

	return result
}

// SMALatest returns the most recent SMA value.
func SMALatest(data []float64, period int) float64 {
	vals := SMA(data, period)
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// EMA calculates the Exponential Moving Average series, seeded with the
// first data point and smoothed with k = 2/(period+1).
func EMA(data []float64, period int) []float64 {
	n := len(data)
	if n == 0 || period <= 0 {
		return nil
	}

	ema := make([]float64, n)
	k := 2.0 / float64(period+1)
	ema[0] = data[0]
	for i := 1; i < n; i++ {
		ema[i] = data[i]*k + ema[i-1]*(1-k)
	}
	return ema
}

// EMALatest returns the most recent EMA value.
func EMALatest(data []float64, period int) float64 {
	vals := EMA(data, period)
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// RSI calculates the Relative Strength Index series with Wilder
// smoothing: the average gain/loss is seeded from the first `period`
// differences, then smoothed with factor (period-1)/period.
// Entries before index `period` are zero.
func RSI(data []float64, period int) []float64 {
	if period <= 0 {
		period = 14
	}
	n := len(data)
	if n < period+1 {
		return nil
	}

	rsi := make([]float64, n)
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := data[i] - data[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	rsi[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < n; i++ {
		change := data[i] - data[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		rsi[i] = rsiValue(avgGain, avgLoss)
	}

	return rsi
}

// RSILatest returns the most recent RSI value.
func RSILatest(data []float64, period int) float64 {
	vals := RSI(data, period)
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACDResult holds a single MACD computation point.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD calculates the Moving Average Convergence Divergence series:
// EMA(fast) − EMA(slow) with an EMA(signal) signal line.
func MACD(data []float64, fast, slow, signal int) []MACDResult {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}
	n := len(data)
	if n < slow {
		return nil
	}

	fastEMA := EMA(data, fast)
	slowEMA := EMA(data, slow)

	macdLine := make([]float64, n)
	for i := 0; i < n; i++ {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := EMA(macdLine, signal)

	results := make([]MACDResult, n)
	for i := 0; i < n; i++ {
		results[i] = MACDResult{
			MACD:      macdLine[i],
			Signal:    signalLine[i],
			Histogram: macdLine[i] - signalLine[i],
		}
	}
	return results
}

// RecentHigh returns the max of the `window` values preceding the last
// element, exclusive of the last element itself.
func RecentHigh(data []float64, window int) float64 {
	n := len(data)
	if n < 2 || window <= 0 {
		return 0
	}
	start := n - 1 - window
	if start < 0 {
		start = 0
	}
	high := math.Inf(-1)
	for _, v := range data[start : n-1] {
		if v > high {
			high = v
		}
	}
	return high
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
