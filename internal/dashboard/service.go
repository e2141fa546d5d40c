// Package dashboard orchestrates quote resolution, unit conversion, and
// cache composition for the five dashboard products. Each product is
// backed by an ordered fallback chain of provider clients; the composed
// payload is cached under the product key and served from cache inside
// the real-time TTL.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/daehw/wondash/internal/analysis/technical"
	"github.com/daehw/wondash/internal/cache"
	"github.com/daehw/wondash/internal/provider"
	"github.com/daehw/wondash/internal/providers/alphavantage"
	"github.com/daehw/wondash/internal/providers/goldapi"
	"github.com/daehw/wondash/internal/providers/naver"
	"github.com/daehw/wondash/internal/providers/twelvedata"
	"github.com/daehw/wondash/internal/providers/yahoo"
	"github.com/daehw/wondash/pkg/models"
)

// ErrUnknownProduct is returned for product identifiers outside the
// fixed dashboard set.
var ErrUnknownProduct = errors.New("unknown product")

// ErrResolveFailed is returned when every source in a product's fallback
// chain failed. No partial payload is produced in that case.
var ErrResolveFailed = errors.New("all quote sources failed")

const (
	// fxFallbackRate stands in for USD/KRW when neither cache nor any
	// live source can supply the rate.
	fxFallbackRate = 1435

	// ozToGram converts troy ounces to grams for the gold payload.
	ozToGram = 31.1035
)

// Clients bundles the provider clients the service resolves quotes with.
type Clients struct {
	AlphaVantage *alphavantage.Client
	GoldAPI      *goldapi.Client
	TwelveData   *twelvedata.Client
	Yahoo        *yahoo.Client
	Naver        *naver.Scraper
}

// Options tunes cache lifetimes. Zero values take the defaults used in
// production: 5 minutes for real-time data, 24 hours for weekly candles.
type Options struct {
	RealtimeTTL time.Duration
	CandleTTL   time.Duration
}

// Service composes product payloads from providers and the cache store.
type Service struct {
	store       *cache.Store
	clients     Clients
	realtimeTTL time.Duration
	candleTTL   time.Duration

	// broadcast, when set, is invoked with every freshly composed
	// payload. The WebSocket hub hangs off this.
	broadcast func(productID string, payload *models.ProductPayload)
}

// New creates the orchestrating service.
func New(store *cache.Store, clients Clients, opts Options) *Service {
	if opts.RealtimeTTL <= 0 {
		opts.RealtimeTTL = 5 * time.Minute
	}
	if opts.CandleTTL <= 0 {
		opts.CandleTTL = 24 * time.Hour
	}
	return &Service{
		store:       store,
		clients:     clients,
		realtimeTTL: opts.RealtimeTTL,
		candleTTL:   opts.CandleTTL,
	}
}

// SetBroadcast installs a hook called with every freshly composed payload.
func (s *Service) SetBroadcast(fn func(productID string, payload *models.ProductPayload)) {
	s.broadcast = fn
}

// Product resolves the full payload for a product identifier. Unless
// force is set, a cached payload inside the real-time TTL is returned
// as-is. force bypasses the payload and daily-history caches but not
// the 24-hour candle cache.
func (s *Service) Product(ctx context.Context, id string, force bool) (*models.ProductPayload, error) {
	product, ok := models.Products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, id)
	}

	cacheKey := cache.ProductKey(id)
	if !force {
		var cached models.ProductPayload
		if s.store.Get(cacheKey, s.realtimeTTL, &cached) {
			return &cached, nil
		}
	}

	fxRate := s.resolveFX(ctx, product)

	payload := s.resolveQuote(ctx, product, fxRate)
	if payload == nil {
		return nil, fmt.Errorf("%w: %s", ErrResolveFailed, id)
	}

	payload.History = s.dailyHistory(ctx, product.ChartSymbol, force)
	payload.Candles = s.weeklyCandles(ctx, product.ChartSymbol)

	s.store.Set(cacheKey, payload)
	if s.broadcast != nil {
		s.broadcast(id, payload)
	}
	return payload, nil
}

// RefreshAll force-refreshes every product concurrently. Individual
// product failures are logged, not fatal; the first error (if any) is
// returned after all products have been attempted.
func (s *Service) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	for _, id := range models.ProductIDs {
		id := id
		g.Go(func() error {
			if _, err := s.Product(ctx, id, true); err != nil {
				log.Printf("refresh %s: %v", id, err)
				return fmt.Errorf("refresh %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Recommend runs the indicator engine over a product's weekly candles.
// The live price only enters the classification when it is in the same
// unit as the chart symbol; gold and the S&P 500 are charted in USD
// while their payload prices are converted to KRW.
func (s *Service) Recommend(ctx context.Context, id string) (models.Recommendation, error) {
	product, ok := models.Products[id]
	if !ok {
		return models.Recommendation{}, fmt.Errorf("%w: %q", ErrUnknownProduct, id)
	}

	payload, err := s.Product(ctx, id, false)
	if err != nil {
		return models.Recommendation{}, err
	}

	var current *float64
	if !product.NeedsFX {
		current = models.Float64Ptr(payload.Price)
	}
	return technical.Recommend(payload.Candles, current), nil
}

// resolveFX determines the USD/KRW rate for products that need currency
// conversion. A cached usd payload wins; otherwise a live fetch is
// attempted (and cached); the fixed fallback rate covers total failure.
func (s *Service) resolveFX(ctx context.Context, product models.Product) float64 {
	var cached models.ProductPayload
	if s.store.Get(cache.ProductKey("usd"), s.realtimeTTL, &cached) {
		return cached.Price
	}
	if !product.NeedsFX {
		return fxFallbackRate
	}

	quote := s.fxChain().Resolve(ctx)
	if quote == nil {
		log.Printf("fx: all sources failed, using fallback rate %v", float64(fxFallbackRate))
		return fxFallbackRate
	}

	s.store.Set(cache.ProductKey("usd"), &models.ProductPayload{
		Price:         quote.Price,
		ChangePercent: quote.ChangePercent,
		Source:        quote.Source,
		History:       []float64{},
	})
	return quote.Price
}

// resolveQuote runs the product's fallback chain and applies its unit
// conversion. Returns nil when the chain is exhausted.
func (s *Service) resolveQuote(ctx context.Context, product models.Product, fxRate float64) *models.ProductPayload {
	switch product.ID {
	case "usd":
		quote := s.fxChain().Resolve(ctx)
		if quote == nil {
			return nil
		}
		// The FX payload intentionally carries no previous price.
		return &models.ProductPayload{
			Price:         quote.Price,
			ChangePercent: quote.ChangePercent,
			Source:        quote.Source,
		}

	case "gold":
		quote := s.goldChain(fxRate).Resolve(ctx)
		if quote == nil {
			return nil
		}
		prev := quote.Price
		if quote.PreviousClose != nil {
			prev = *quote.PreviousClose
		}
		// KRW/oz -> KRW/g at the payload boundary only.
		return &models.ProductPayload{
			Price:         quote.Price / ozToGram,
			PreviousPrice: models.Float64Ptr(prev / ozToGram),
			ChangePercent: quote.ChangePercent,
			Source:        quote.Source,
		}

	case "sp500":
		quote := s.sp500Chain().Resolve(ctx)
		if quote == nil {
			return nil
		}
		payload := &models.ProductPayload{
			Price:         quote.Price * fxRate,
			ChangePercent: quote.ChangePercent,
			Source:        quote.Source,
		}
		if quote.PreviousClose != nil {
			payload.PreviousPrice = models.Float64Ptr(*quote.PreviousClose * fxRate)
		}
		return payload

	case "kospi", "nasdaq":
		var chain *provider.Chain
		if product.ID == "kospi" {
			chain = s.kospiChain()
		} else {
			chain = s.nasdaqChain()
		}
		quote := chain.Resolve(ctx)
		if quote == nil {
			return nil
		}
		payload := &models.ProductPayload{
			Price:         quote.Price,
			ChangePercent: quote.ChangePercent,
			Source:        quote.Source,
		}
		if quote.PreviousClose != nil {
			payload.PreviousPrice = quote.PreviousClose
		}
		return payload
	}
	return nil
}

// --- per-product fallback chains ---

func (s *Service) fxChain() *provider.Chain {
	return provider.NewChain("usd/krw",
		provider.Source{Name: alphavantage.SourceName, Fetch: func(ctx context.Context) (*models.Quote, error) {
			return s.clients.AlphaVantage.ExchangeRate(ctx, "USD", "KRW")
		}},
		provider.Source{Name: yahoo.SourceName, Fetch: func(ctx context.Context) (*models.Quote, error) {
			return s.clients.Yahoo.Quote(ctx, "USDKRW=X")
		}},
	)
}

// goldChain quotes XAU in KRW/oz. The Yahoo leg quotes in USD/oz and is
// converted with the already-resolved FX rate; without a rate it is
// skipped entirely.
func (s *Service) goldChain(fxRate float64) *provider.Chain {
	sources := []provider.Source{
		{Name: goldapi.SourceName, Fetch: func(ctx context.Context) (*models.Quote, error) {
			return s.clients.GoldAPI.SpotPrice(ctx, "XAU", "KRW")
		}},
	}
	if fxRate > 0 {
		sources = append(sources, provider.Source{
			Name: yahoo.SourceName,
			Fetch: func(ctx context.Context) (*models.Quote, error) {
				quote, err := s.clients.Yahoo.Quote(ctx, "XAUUSD=X")
				if err != nil {
					return nil, err
				}
				quote.Price *= fxRate
				if quote.PreviousClose != nil {
					quote.PreviousClose = models.Float64Ptr(*quote.PreviousClose * fxRate)
				}
				return quote, nil
			},
		})
	}
	return provider.NewChain("gold", sources...)
}

func (s *Service) sp500Chain() *provider.Chain {
	return provider.NewChain("sp500",
		provider.Source{Name: alphavantage.SourceName, Fetch: func(ctx context.Context) (*models.Quote, error) {
			return s.clients.AlphaVantage.GlobalQuote(ctx, "SPY")
		}},
		provider.Source{Name: yahoo.SourceName, Fetch: func(ctx context.Context) (*models.Quote, error) {
			return s.clients.Yahoo.Quote(ctx, "SPY")
		}},
	)
}

func (s *Service) kospiChain() *provider.Chain {
	return provider.NewChain("kospi",
		provider.Source{Name: twelvedata.SourceName, Fetch: func(ctx context.Context) (*models.Quote, error) {
			return s.clients.TwelveData.Quote(ctx, "KOSPI")
		}},
		provider.Source{Name: yahoo.SourceName, Fetch: func(ctx context.Context) (*models.Quote, error) {
			return s.clients.Yahoo.Quote(ctx, "^KS11")
		}},
		provider.Source{Name: naver.SourceName, Fetch: func(ctx context.Context) (*models.Quote, error) {
			return s.clients.Naver.Kospi(ctx)
		}},
	)
}

func (s *Service) nasdaqChain() *provider.Chain {
	return provider.NewChain("nasdaq",
		provider.Source{Name: twelvedata.SourceName, Fetch: func(ctx context.Context) (*models.Quote, error) {
			return s.clients.TwelveData.Quote(ctx, "IXIC")
		}},
		provider.Source{Name: yahoo.SourceName, Fetch: func(ctx context.Context) (*models.Quote, error) {
			return s.clients.Yahoo.Quote(ctx, "^IXIC")
		}},
	)
}

// --- chart data attachment ---

// dailyHistory returns the month of daily closes for the chart symbol,
// from cache inside the real-time TTL unless force is set. An empty
// fetch result is served but never cached.
func (s *Service) dailyHistory(ctx context.Context, symbol string, force bool) []float64 {
	key := cache.ChartKey(symbol)
	if !force {
		var history []float64
		if s.store.Get(key, s.realtimeTTL, &history) {
			return history
		}
	}

	history := s.clients.Yahoo.DailyHistory(ctx, symbol)
	if len(history) > 0 {
		s.store.Set(key, history)
	}
	if history == nil {
		history = []float64{}
	}
	return history
}

// weeklyCandles returns the two years of weekly bars for the chart
// symbol. The candle cache runs on its own 24-hour TTL and is never
// bypassed by force refresh.
func (s *Service) weeklyCandles(ctx context.Context, symbol string) []models.Candle {
	key := cache.CandlesKey(symbol)
	var candles []models.Candle
	if s.store.Get(key, s.candleTTL, &candles) {
		return candles
	}

	candles = s.clients.Yahoo.WeeklyCandles(ctx, symbol)
	if len(candles) > 0 {
		s.store.Set(key, candles)
	}
	if candles == nil {
		candles = []models.Candle{}
	}
	return candles
}
