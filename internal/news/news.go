// Package news aggregates financial headlines from RSS feeds for the
// dashboard's news panel. Results are cached in memory for ten minutes;
// a failed feed is skipped rather than failing the whole fetch.
package news

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/daehw/wondash/internal/infra"
	"github.com/daehw/wondash/pkg/models"
)

// Source is one configured RSS feed.
type Source struct {
	Name string
	URL  string
}

// DefaultSources lists the feeds the dashboard ships with: Korean and
// global market coverage matching the tracked products.
var DefaultSources = []Source{
	{Name: "연합뉴스 경제", URL: "https://www.yna.co.kr/rss/economy.xml"},
	{Name: "MarketWatch", URL: "https://feeds.content.dowjones.io/public/rss/mw_topstories"},
	{Name: "Investing.com", URL: "https://www.investing.com/rss/news_25.rss"},
}

// Fetcher pulls and caches headlines from the configured feeds.
type Fetcher struct {
	sources []Source
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// New creates a fetcher over the given sources; nil means DefaultSources.
func New(sources []Source) *Fetcher {
	if sources == nil {
		sources = DefaultSources
	}
	return &Fetcher{
		sources: sources,
		cache:   infra.NewCache(10 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
}

// Headlines returns the newest items across all feeds, capped at limit
// (0 means no cap).
func (f *Fetcher) Headlines(ctx context.Context, limit int) ([]models.NewsItem, error) {
	cacheKey := fmt.Sprintf("news:%d", limit)
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.([]models.NewsItem), nil
	}

	var items []models.NewsItem
	for _, src := range f.sources {
		fetched, err := f.fetchFeed(ctx, src)
		if err != nil {
			// Non-critical: skip failed sources.
			continue
		}
		items = append(items, fetched...)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	f.cache.Set(cacheKey, items)
	return items, nil
}

func (f *Fetcher) fetchFeed(ctx context.Context, src Source) ([]models.NewsItem, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		n := models.NewsItem{
			Title:   item.Title,
			Link:    item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			n.PublishedAt = *item.PublishedParsed
		}
		items = append(items, n)
	}
	return items, nil
}

// cleanHTML strips markup from a feed summary using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
