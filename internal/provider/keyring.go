package provider

import "sync"

// KeyRing hands out API keys from a fixed pool in round-robin order.
// Each call advances the pointer by one slot, wrapping at the pool
// length. The mutex matters: products are refreshed concurrently, so the
// counter would race without it.
type KeyRing struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewKeyRing creates a ring over the given keys. An empty pool is
// allowed; Next then returns "".
func NewKeyRing(keys []string) *KeyRing {
	return &KeyRing{keys: keys}
}

// Next returns the next key in rotation.
func (r *KeyRing) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.keys) == 0 {
		return ""
	}
	key := r.keys[r.next]
	r.next = (r.next + 1) % len(r.keys)
	return key
}

// Len returns the pool size.
func (r *KeyRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}
