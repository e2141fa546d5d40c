// Package yahoo implements the Yahoo Finance chart-API client. It is the
// universal fallback quote source and the only source for daily history
// and weekly candles. The endpoint is unauthenticated but rejects
// requests without a browser-like User-Agent.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/daehw/wondash/internal/infra"
	"github.com/daehw/wondash/pkg/models"
)

// SourceName identifies quotes produced by this client.
const SourceName = "yahoo"

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client talks to the Yahoo Finance v8 chart API.
type Client struct {
	baseURL   string
	userAgent string
	limiter   *infra.RateLimiter
}

// New creates a Yahoo client.
func New() *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		userAgent: infra.BrowserUserAgent,
		limiter:   infra.NewRateLimiter(5, time.Second),
	}
}

// SetBaseURL overrides the API host. Used by tests.
func (c *Client) SetBaseURL(base string) { c.baseURL = strings.TrimRight(base, "/") }

// Quote derives a quote for symbol from the 2-day daily chart metadata.
// chartPreviousClose is preferred over previousClose, and the change
// percent is computed from the two closes when Yahoo omits its own figure.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	result, err := c.fetchChart(ctx, symbol, "1d", "2d")
	if err != nil {
		return nil, err
	}

	meta := result.Meta
	if meta.RegularMarketPrice == 0 {
		return nil, fmt.Errorf("yahoo quote %s: no regular market price", symbol)
	}

	prev := meta.ChartPreviousClose
	if prev == 0 {
		prev = meta.PreviousClose
	}

	var pct float64
	if meta.RegularMarketChangePercent != nil {
		pct = *meta.RegularMarketChangePercent
	} else {
		pct = models.ChangePercentFrom(meta.RegularMarketPrice, prev)
	}

	quote := &models.Quote{
		Price:         meta.RegularMarketPrice,
		ChangePercent: pct,
		Source:        SourceName,
	}
	if prev != 0 {
		quote.PreviousClose = models.Float64Ptr(prev)
	}
	return quote, nil
}

// DailyHistory fetches one month of daily closes for the sparkline,
// rounded to 2 decimal places with null entries dropped. Fails soft: any
// network or parse error is logged and yields an empty slice.
func (c *Client) DailyHistory(ctx context.Context, symbol string) []float64 {
	result, err := c.fetchChart(ctx, symbol, "1d", "1mo")
	if err != nil {
		log.Printf("yahoo history %s: %v", symbol, err)
		return nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	closes := result.Indicators.Quote[0].Close
	history := make([]float64, 0, len(closes))
	for _, p := range closes {
		if p == nil {
			continue
		}
		history = append(history, math.Round(*p*100)/100)
	}
	return history
}

// WeeklyCandles fetches two years of weekly OHLC bars for the indicator
// engine. Weeks with a null close are dropped; there is no forward-fill.
// Fails soft like DailyHistory.
func (c *Client) WeeklyCandles(ctx context.Context, symbol string) []models.Candle {
	result, err := c.fetchChart(ctx, symbol, "1wk", "2y")
	if err != nil {
		log.Printf("yahoo candles %s: %v", symbol, err)
		return nil
	}
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		candle := models.Candle{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			candle.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			candle.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			candle.Low = *q.Low[i]
		}
		candles = append(candles, candle)
	}
	return candles
}

// fetchChart calls the v8 chart endpoint and returns the first result.
func (c *Client) fetchChart(ctx context.Context, symbol, interval, rng string) (*chartResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL, url.PathEscape(symbol), interval, rng)

	body, _, err := infra.DoGet(ctx, reqURL, map[string]string{
		"Accept":     "application/json",
		"User-Agent": c.userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: read response: %w", symbol, err)
	}

	var resp chartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: parse JSON: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: no result", symbol)
	}
	return &resp.Chart.Result[0], nil
}
