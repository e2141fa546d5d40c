package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	return Open(path), path
}

func TestRoundTrip(t *testing.T) {
	s, _ := tempStore(t)

	type payload struct {
		Price  float64 `json:"price"`
		Source string  `json:"source"`
	}

	want := payload{Price: 1435.2, Source: "alphavantage"}
	s.Set(ProductKey("usd"), want)

	var got payload
	if !s.Get(ProductKey("usd"), 5*time.Minute, &got) {
		t.Fatal("expected cache hit before TTL expiry")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTTLExpiry(t *testing.T) {
	s, _ := tempStore(t)

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return base })
	s.Set("product_gold", 125160.0)

	// Advance past the 5-minute TTL.
	s.SetClock(func() time.Time { return base.Add(5*time.Minute + time.Second) })

	var v float64
	if s.Get("product_gold", 5*time.Minute, &v) {
		t.Error("expected miss after TTL expiry")
	}

	// The longer candle TTL still admits the same entry.
	if !s.Get("product_gold", 24*time.Hour, &v) {
		t.Error("expected hit under 24h TTL")
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	s, path := tempStore(t)
	s.Set(ChartKey("SPY"), []float64{500.12, 501.5})

	reopened := Open(path)
	var history []float64
	if !reopened.Get(ChartKey("SPY"), time.Hour, &history) {
		t.Fatal("expected entry to survive reopen")
	}
	if len(history) != 2 || history[0] != 500.12 {
		t.Errorf("unexpected history after reopen: %v", history)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Open(path)
	if s.Len() != 0 {
		t.Errorf("expected empty store from corrupt file, got %d entries", s.Len())
	}

	// The store must still be writable afterwards.
	s.Set("product_usd", 1435.0)
	var v float64
	if !s.Get("product_usd", time.Minute, &v) {
		t.Error("expected store to work after corrupt load")
	}
}

func TestClear(t *testing.T) {
	s, path := tempStore(t)
	s.Set("product_usd", 1.0)
	s.Set("candles_SPY", 2.0)
	s.Clear()

	if s.Len() != 0 {
		t.Errorf("expected empty store after Clear, got %d", s.Len())
	}
	if Open(path).Len() != 0 {
		t.Error("expected Clear to persist to disk")
	}
}

func TestStatusAges(t *testing.T) {
	s, _ := tempStore(t)
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return base })
	s.Set("product_kospi", 2523.45)

	s.SetClock(func() time.Time { return base.Add(90 * time.Second) })
	infos := s.Status()
	if len(infos) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(infos))
	}
	if infos[0].Key != "product_kospi" {
		t.Errorf("unexpected key %s", infos[0].Key)
	}
	if infos[0].AgeMillis != 90_000 {
		t.Errorf("expected age 90000ms, got %d", infos[0].AgeMillis)
	}
}

func TestKeyNamespaces(t *testing.T) {
	if ProductKey("usd") != "product_usd" {
		t.Error("product key prefix mismatch")
	}
	if ChartKey("^KS11") != "chart_^KS11" {
		t.Error("chart key prefix mismatch")
	}
	if CandlesKey("SPY") != "candles_SPY" {
		t.Error("candles key prefix mismatch")
	}
}
