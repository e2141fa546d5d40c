// Package alphavantage implements the Alpha Vantage market-data client.
// It covers the CURRENCY_EXCHANGE_RATE and GLOBAL_QUOTE functions, keyed
// with a rotating pool of API keys (the free tier is heavily throttled
// per key, so the dashboard cycles through several).
//
// Docs: https://www.alphavantage.co/documentation/
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/daehw/wondash/internal/infra"
	"github.com/daehw/wondash/internal/provider"
	"github.com/daehw/wondash/pkg/models"
)

// SourceName identifies quotes produced by this client.
const SourceName = "alphavantage"

const defaultBaseURL = "https://www.alphavantage.co"

// Client talks to the Alpha Vantage query API.
type Client struct {
	baseURL string
	keys    *provider.KeyRing
	limiter *infra.RateLimiter
}

// New creates a client over the given key pool.
func New(keys []string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		keys:    provider.NewKeyRing(keys),
		limiter: infra.NewRateLimiter(5, time.Second),
	}
}

// SetBaseURL overrides the API host. Used by tests.
func (c *Client) SetBaseURL(base string) { c.baseURL = strings.TrimRight(base, "/") }

// ExchangeRate fetches the realtime FX rate for a currency pair.
// Alpha Vantage supplies no previous close for FX, so the quote carries
// only the rate itself.
func (c *Client) ExchangeRate(ctx context.Context, from, to string) (*models.Quote, error) {
	var resp exchangeRateResponse
	query := url.Values{
		"function":      {"CURRENCY_EXCHANGE_RATE"},
		"from_currency": {from},
		"to_currency":   {to},
	}
	if err := c.fetchJSON(ctx, query, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage exchange %s/%s: %w", from, to, err)
	}

	raw := resp.RealtimeCurrencyExchangeRate.ExchangeRate
	if raw == "" {
		return nil, fmt.Errorf("alphavantage exchange %s/%s: missing exchange rate field", from, to)
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage exchange %s/%s: bad rate %q: %w", from, to, raw, err)
	}

	return &models.Quote{Price: price, Source: SourceName}, nil
}

// GlobalQuote fetches a delayed quote for a single ticker. The change
// percent arrives as a string with a trailing '%', which is stripped
// before parsing.
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var resp globalQuoteResponse
	query := url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
	}
	if err := c.fetchJSON(ctx, query, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: %w", symbol, err)
	}

	q := resp.GlobalQuote
	if q.Price == "" {
		return nil, fmt.Errorf("alphavantage quote %s: empty quote", symbol)
	}
	price, err := strconv.ParseFloat(q.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: bad price %q: %w", symbol, q.Price, err)
	}
	prev, err := strconv.ParseFloat(q.PreviousClose, 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: bad previous close %q: %w", symbol, q.PreviousClose, err)
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(q.ChangePercent, "%"), 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: bad change percent %q: %w", symbol, q.ChangePercent, err)
	}

	return &models.Quote{
		Price:         price,
		PreviousClose: models.Float64Ptr(prev),
		ChangePercent: pct,
		Source:        SourceName,
	}, nil
}

// fetchJSON issues a keyed query and decodes the response. Each call
// advances the key ring by one slot.
func (c *Client) fetchJSON(ctx context.Context, query url.Values, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	query.Set("apikey", c.keys.Next())
	reqURL := c.baseURL + "/query?" + query.Encode()

	body, _, err := infra.DoGet(ctx, reqURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}
