// Package cache implements the durable dashboard cache: a single JSON
// file mapping string keys to {data, timestamp} entries, loaded wholesale
// at startup and rewritten wholesale on every write.
//
// TTLs are a property of the key family, passed by the caller on Get:
// product_<id> and chart_<symbol> keys use the real-time TTL, while
// candles_<symbol> keys use the 24h candle TTL. Candle entries are
// stamped with the write time, so that TTL governs the freshness of our
// copy, not of the underlying weekly bar.
package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Key prefixes for the three cache namespaces. No key is ever shared
// across namespaces.
const (
	ProductKeyPrefix = "product_"
	ChartKeyPrefix   = "chart_"
	CandlesKeyPrefix = "candles_"
)

// ProductKey returns the cache key for a product payload.
func ProductKey(id string) string { return ProductKeyPrefix + id }

// ChartKey returns the cache key for a daily close history.
func ChartKey(symbol string) string { return ChartKeyPrefix + symbol }

// CandlesKey returns the cache key for a weekly candle series.
func CandlesKey(symbol string) string { return CandlesKeyPrefix + symbol }

// Entry is one persisted cache record. Timestamp is epoch milliseconds.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// EntryInfo describes one cache entry for the status endpoint.
type EntryInfo struct {
	Key       string `json:"key"`
	Timestamp int64  `json:"timestamp"`
	AgeMillis int64  `json:"ageMillis"`
}

// Store is the file-backed cache. All entries live in memory; Set
// rewrites the entire backing file synchronously. Caching is best-effort:
// a missing or unparsable file starts an empty store and write failures
// are logged, never escalated.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
	now     func() time.Time
}

// Open loads the store from path. Missing or corrupt files are discarded.
func Open(path string) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
		now:     time.Now,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("cache: failed to read %s: %v", path, err)
		}
		return s
	}
	if err := json.Unmarshal(raw, &s.entries); err != nil {
		log.Printf("cache: discarding unparsable %s: %v", path, err)
		s.entries = make(map[string]Entry)
		return s
	}
	log.Printf("cache: loaded %d entries from %s", len(s.entries), path)
	return s
}

// SetClock replaces the store's time source. Used by tests to simulate
// TTL expiry without sleeping.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Get unmarshals the entry under key into dest if the entry exists and is
// younger than ttl. Returns false on a miss or an expired entry; the
// caller must refetch.
func (s *Store) Get(key string, ttl time.Duration, dest any) bool {
	s.mu.Lock()
	entry, ok := s.entries[key]
	nowMs := s.now().UnixMilli()
	s.mu.Unlock()

	if !ok || nowMs-entry.Timestamp >= ttl.Milliseconds() {
		return false
	}
	if err := json.Unmarshal(entry.Data, dest); err != nil {
		log.Printf("cache: bad entry %s: %v", key, err)
		return false
	}
	return true
}

// Set stores value under key with the current timestamp and rewrites the
// backing file.
func (s *Store) Set(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: cannot marshal %s: %v", key, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{Data: data, Timestamp: s.now().UnixMilli()}
	s.persistLocked()
}

// Clear removes every entry and rewrites the backing file.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
	s.persistLocked()
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Status reports every entry's key and age.
func (s *Store) Status() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	nowMs := s.now().UnixMilli()
	infos := make([]EntryInfo, 0, len(s.entries))
	for key, entry := range s.entries {
		infos = append(infos, EntryInfo{
			Key:       key,
			Timestamp: entry.Timestamp,
			AgeMillis: nowMs - entry.Timestamp,
		})
	}
	return infos
}

// persistLocked writes the full entry map to disk. Must be called with mu
// held. The plain overwrite mirrors the dashboard's best-effort contract;
// an interrupted write is discarded on the next Open.
func (s *Store) persistLocked() {
	raw, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		log.Printf("cache: cannot marshal store: %v", err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		log.Printf("cache: failed to write %s: %v", s.path, err)
	}
}

// String implements fmt.Stringer for log lines.
func (s *Store) String() string {
	return fmt.Sprintf("cache.Store(%s, %d entries)", s.path, s.Len())
}
