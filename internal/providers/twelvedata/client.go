// Package twelvedata implements the Twelve Data quote client, the
// primary source for the KOSPI and NASDAQ indices. The API returns all
// numeric fields as strings and signals errors inside a 200 body.
package twelvedata

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
	"github.com/daehw/wondash/pkg/models"
)

// SourceName identifies quotes produced by this client.
const SourceName = "twelvedata"

const defaultBaseURL = "https://api.twelvedata.com"

// Client talks to the Twelve Data REST API.
type Client struct {
	baseURL string
	apiKey  string
	limiter *infra.RateLimiter
}

// New creates a client with a single API key.
func New(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		limiter: infra.NewRateLimiter(5, time.Second),
	}
}

// SetBaseURL overrides the API host. Used by tests.
func (c *Client) SetBaseURL(base string) { c.baseURL = strings.TrimRight(base, "/") }

// Quote fetches the latest quote for an index or equity symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{
		"symbol": {symbol},
		"apikey": {c.apiKey},
	}
	reqURL := c.baseURL + "/quote?" + query.Encode()

	body, _, err := infra.DoGet(ctx, reqURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("twelvedata quote %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("twelvedata quote %s: read response: %w", symbol, err)
	}

	var resp quoteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("twelvedata quote %s: parse JSON: %w", symbol, err)
	}
	if resp.Status == "error" {
		return nil, fmt.Errorf("twelvedata quote %s: %s", symbol, resp.Message)
	}
	if resp.Close == "" {
		return nil, fmt.Errorf("twelvedata quote %s: empty quote", symbol)
	}

	price, err := strconv.ParseFloat(resp.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("twelvedata quote %s: bad close %q: %w", symbol, resp.Close, err)
	}
	quote := &models.Quote{Price: price, Source: SourceName}

	if resp.PreviousClose != "" {
		prev, err := strconv.ParseFloat(resp.PreviousClose, 64)
		if err != nil {
			return nil, fmt.Errorf("twelvedata quote %s: bad previous close %q: %w", symbol, resp.PreviousClose, err)
		}
		quote.PreviousClose = models.Float64Ptr(prev)
	}
	if resp.PercentChange != "" {
		pct, err := strconv.ParseFloat(resp.PercentChange, 64)
		if err != nil {
			return nil, fmt.Errorf("twelvedata quote %s: bad percent change %q: %w", symbol, resp.PercentChange, err)
		}
		quote.ChangePercent = pct
	}
	return quote, nil
}

// quoteResponse mirrors the /quote payload. Numbers arrive as strings.
type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Close         string `json:"close"`
	PreviousClose string `json:"previous_close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}
