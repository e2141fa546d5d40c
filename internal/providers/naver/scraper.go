// Package naver scrapes the KOSPI index from the Naver Finance market
// page. It is the last-resort fallback when both quote APIs are down,
// so it only needs the headline number and the day's move.
package naver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/daehw/wondash/internal/infra"
	"github.com/daehw/wondash/pkg/models"
)

// SourceName identifies quotes produced by this scraper.
const SourceName = "naver"

const defaultBaseURL = "https://finance.naver.com"

// Scraper pulls the KOSPI headline quote out of the sise page markup.
type Scraper struct {
	baseURL   string
	userAgent string
	limiter   *infra.RateLimiter
}

// New creates a Naver Finance scraper.
func New() *Scraper {
	return &Scraper{
		baseURL:   defaultBaseURL,
		userAgent: infra.BrowserUserAgent,
		limiter:   infra.NewRateLimiter(2, time.Second),
	}
}

// SetBaseURL overrides the page host. Used by tests.
func (s *Scraper) SetBaseURL(base string) { s.baseURL = strings.TrimRight(base, "/") }

// Kospi scrapes the current KOSPI index value and change percent. The
// page carries no previous close, so the quote omits it.
func (s *Scraper) Kospi(ctx context.Context) (*models.Quote, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, _, err := infra.DoGet(ctx, s.baseURL+"/sise/", map[string]string{
		"User-Agent": s.userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("naver kospi: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("naver kospi: parse page: %w", err)
	}

	price, err := parseNumber(doc.Find("#KOSPI_now").First().Text())
	if err != nil {
		return nil, fmt.Errorf("naver kospi: index value: %w", err)
	}

	// The change node reads like "12.34 +0.45%" plus direction text;
	// only the percent token matters here.
	pct, err := parsePercent(doc.Find("#KOSPI_change").First().Text())
	if err != nil {
		return nil, fmt.Errorf("naver kospi: change: %w", err)
	}

	return &models.Quote{
		Price:         price,
		ChangePercent: pct,
		Source:        SourceName,
	}, nil
}

// parseNumber parses a comma-grouped Korean market number like "2,750.12".
func parseNumber(text string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(cleaned, 64)
}

// parsePercent finds the percent token in the change node text and
// applies the direction: the page writes the magnitude unsigned and
// marks falls with "하락" (or a minus sign).
func parsePercent(text string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	for _, f := range fields {
		if !strings.Contains(f, "%") {
			continue
		}
		token := strings.TrimSuffix(strings.Trim(f, "%상승하락보합"), "%")
		token = strings.TrimPrefix(token, "+")
		pct, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return 0, fmt.Errorf("bad percent token %q: %w", f, err)
		}
		if pct > 0 && strings.Contains(text, "하락") {
			pct = -pct
		}
		return pct, nil
	}
	return 0, fmt.Errorf("no percent token in %q", text)
}
