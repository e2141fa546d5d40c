package provider

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/daehw/wondash/pkg/models"
)

func TestChainReturnsFirstSuccess(t *testing.T) {
	var calls []string

	chain := NewChain("usdkrw",
		Source{Name: "a", Fetch: func(ctx context.Context) (*models.Quote, error) {
			calls = append(calls, "a")
			return nil, errors.New("boom")
		}},
		Source{Name: "b", Fetch: func(ctx context.Context) (*models.Quote, error) {
			calls = append(calls, "b")
			return &models.Quote{Price: 1400, Source: "b"}, nil
		}},
		Source{Name: "c", Fetch: func(ctx context.Context) (*models.Quote, error) {
			calls = append(calls, "c")
			return &models.Quote{Price: 9999, Source: "c"}, nil
		}},
	)

	quote := chain.Resolve(context.Background())
	if quote == nil || quote.Source != "b" {
		t.Fatalf("expected quote from b, got %+v", quote)
	}
	if len(calls) != 2 {
		t.Errorf("expected chain to stop after first success, calls: %v", calls)
	}
}

func TestChainNilQuoteTreatedAsFailure(t *testing.T) {
	chain := NewChain("gold",
		Source{Name: "a", Fetch: func(ctx context.Context) (*models.Quote, error) {
			return nil, nil
		}},
		Source{Name: "b", Fetch: func(ctx context.Context) (*models.Quote, error) {
			return &models.Quote{Price: 1, Source: "b"}, nil
		}},
	)
	quote := chain.Resolve(context.Background())
	if quote == nil || quote.Source != "b" {
		t.Fatalf("expected fallback past nil quote, got %+v", quote)
	}
}

func TestChainExhaustedReturnsNil(t *testing.T) {
	chain := NewChain("kospi",
		Source{Name: "a", Fetch: func(ctx context.Context) (*models.Quote, error) {
			return nil, errors.New("down")
		}},
	)
	if quote := chain.Resolve(context.Background()); quote != nil {
		t.Errorf("expected nil from exhausted chain, got %+v", quote)
	}
}

func TestKeyRingRotation(t *testing.T) {
	ring := NewKeyRing([]string{"k1", "k2", "k3"})

	got := []string{ring.Next(), ring.Next(), ring.Next(), ring.Next()}
	want := []string{"k1", "k2", "k3", "k1"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestKeyRingEmpty(t *testing.T) {
	ring := NewKeyRing(nil)
	if key := ring.Next(); key != "" {
		t.Errorf("expected empty key from empty ring, got %q", key)
	}
}

func TestKeyRingConcurrent(t *testing.T) {
	ring := NewKeyRing([]string{"a", "b"})

	var wg sync.WaitGroup
	counts := make(chan string, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counts <- ring.Next()
		}()
	}
	wg.Wait()
	close(counts)

	seen := map[string]int{}
	for k := range counts {
		seen[k]++
	}
	// Perfect alternation: 100 calls over a 2-key ring yields 50 each.
	if seen["a"] != 50 || seen["b"] != 50 {
		t.Errorf("expected even rotation, got %v", seen)
	}
}
