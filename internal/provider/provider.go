// Package provider defines the fallback-chain abstraction the dashboard
// uses to resolve each logical quantity (FX rate, gold spot, index level)
// across multiple upstream market-data APIs, plus the shared API key ring.
package provider

import (
	"context"
	"log"

	"github.com/daehw/wondash/pkg/models"
)

// AttemptFunc tries one provider for one logical quantity. A nil Quote
// with a nil error is treated the same as an error: no usable data.
type AttemptFunc func(ctx context.Context) (*models.Quote, error)

// Source is one link in a fallback chain.
type Source struct {
	Name  string
	Fetch AttemptFunc
}

// Chain is an ordered list of sources for a single logical quantity.
// The order is fixed at construction; there is no health-based reordering.
type Chain struct {
	quantity string
	sources  []Source
}

// NewChain builds a chain for the named quantity. The quantity name only
// appears in logs.
func NewChain(quantity string, sources ...Source) *Chain {
	return &Chain{quantity: quantity, sources: sources}
}

// Resolve tries each source in order and returns the first usable Quote.
// Provider failures are logged and swallowed; an exhausted chain returns
// nil rather than an error, per the dashboard's degrade-don't-crash rule.
func (c *Chain) Resolve(ctx context.Context) *models.Quote {
	for _, src := range c.sources {
		quote, err := src.Fetch(ctx)
		if err != nil {
			log.Printf("%s: %s failed: %v", c.quantity, src.Name, err)
			continue
		}
		if quote == nil {
			log.Printf("%s: %s returned no data", c.quantity, src.Name)
			continue
		}
		return quote
	}
	return nil
}
