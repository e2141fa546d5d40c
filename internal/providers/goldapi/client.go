// Package goldapi implements the goldapi.io spot-metal client. It quotes
// XAU in KRW per troy ounce; conversion to grams happens downstream at
// the payload boundary. Authentication is a per-request x-access-token
// header drawn from a rotating key pool.
package goldapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/daehw/wondash/internal/infra"
	"github.com/daehw/wondash/internal/provider"
	"github.com/daehw/wondash/pkg/models"
)

// SourceName identifies quotes produced by this client.
const SourceName = "goldapi"

const defaultBaseURL = "https://www.goldapi.io"

// Client talks to the goldapi.io REST API.
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

// SpotPrice fetches the spot quote for a metal/currency pair, e.g.
// ("XAU", "KRW"). When the live price field is empty (off-hours), the
// previous close stands in for it.
func (c *Client) SpotPrice(ctx context.Context, metal, currency string) (*models.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/api/%s/%s", c.baseURL, metal, currency)
	body, _, err := infra.DoGet(ctx, reqURL, map[string]string{
		"Accept":         "application/json",
		"x-access-token": c.keys.Next(),
	})
	if err != nil {
		return nil, fmt.Errorf("goldapi %s/%s: %w", metal, currency, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("goldapi %s/%s: read response: %w", metal, currency, err)
	}

	var resp spotResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("goldapi %s/%s: parse JSON: %w", metal, currency, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("goldapi %s/%s: %s", metal, currency, resp.Error)
	}

	price := resp.Price
	if price == 0 {
		price = resp.PrevClosePrice
	}
	if price == 0 {
		return nil, fmt.Errorf("goldapi %s/%s: no price in response", metal, currency)
	}

	quote := &models.Quote{
		Price:         price,
		ChangePercent: resp.ChangePercent,
		Source:        SourceName,
	}
	if resp.PrevClosePrice != 0 {
		quote.PreviousClose = models.Float64Ptr(resp.PrevClosePrice)
	}
	return quote, nil
}

// spotResponse mirrors the goldapi.io payload. Errors come back as 200s
// with an "error" string.
type spotResponse struct {
	Metal          string  `json:"metal"`
	Currency       string  `json:"currency"`
	Price          float64 `json:"price"`
	PrevClosePrice float64 `json:"prev_close_price"`
	ChangePercent  float64 `json:"chp"`
	Error          string  `json:"error"`
}
