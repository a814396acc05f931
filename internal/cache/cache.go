package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Domain names a cache partition with its own freshness window.
type Domain string

const (
	DomainStocks         Domain = "stocks"
	DomainMutualFunds    Domain = "mutual_funds"
	DomainCrypto         Domain = "crypto"
	DomainTopMovers      Domain = "top_movers"
	DomainMarketOverview Domain = "market_overview"
)

// DefaultTTLs are the per-domain freshness windows, fixed at configuration
// time.
var DefaultTTLs = map[Domain]time.Duration{
	DomainStocks:         300 * time.Second,
	DomainMutualFunds:    3600 * time.Second,
	DomainCrypto:         300 * time.Second,
	DomainTopMovers:      300 * time.Second,
	DomainMarketOverview: 60 * time.Second,
}

type entry struct {
	value     interface{}
	writtenAt time.Time
}

type domainStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

// Manager is a time-keyed store partitioned into named domains. Values are
// opaque; entries are overwritten in place on recompute and replaced lazily
// on expired reads. There is no size bound: the key space is bounded by the
// tracked catalog, not by the cache.
type Manager struct {
	log     zerolog.Logger
	now     func() time.Time
	domains map[Domain]*domainStore
}

// New creates a cache manager with the given per-domain TTLs.
func New(ttls map[Domain]time.Duration, log zerolog.Logger) *Manager {
	domains := make(map[Domain]*domainStore, len(ttls))
	for d, ttl := range ttls {
		domains[d] = &domainStore{
			ttl:     ttl,
			entries: make(map[string]entry),
		}
	}

	return &Manager{
		log:     log.With().Str("component", "cache").Logger(),
		now:     time.Now,
		domains: domains,
	}
}

// SetClock overrides the time source. Used by tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// GetOrCompute returns the cached value for (domain, key) when it is younger
// than the domain TTL; otherwise it invokes compute synchronously, stores the
// result, and returns it. A compute failure propagates to the caller without
// mutating the cache. Two concurrent callers hitting the same expired key
// both compute and both write — there is no request-level deduplication.
func (m *Manager) GetOrCompute(domain Domain, key string, compute func() (interface{}, error)) (interface{}, error) {
	store, ok := m.domains[domain]
	if !ok {
		return nil, fmt.Errorf("unknown cache domain %q", domain)
	}

	store.mu.Lock()
	if e, ok := store.entries[key]; ok && m.now().Sub(e.writtenAt) < store.ttl {
		store.mu.Unlock()
		return e.value, nil
	}
	store.mu.Unlock()

	value, err := compute()
	if err != nil {
		return nil, err
	}

	store.mu.Lock()
	store.entries[key] = entry{value: value, writtenAt: m.now()}
	store.mu.Unlock()

	m.log.Debug().Str("domain", string(domain)).Str("key", key).Msg("Cache entry refreshed")

	return value, nil
}

// Get returns the value for (domain, key) if present and fresh.
func (m *Manager) Get(domain Domain, key string) (interface{}, bool) {
	store, ok := m.domains[domain]
	if !ok {
		return nil, false
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	e, ok := store.entries[key]
	if !ok || m.now().Sub(e.writtenAt) >= store.ttl {
		return nil, false
	}

	return e.value, true
}

// Put writes a value unconditionally, stamping it with the current time.
// Used by the background refresh scheduler.
func (m *Manager) Put(domain Domain, key string, value interface{}) {
	store, ok := m.domains[domain]
	if !ok {
		return
	}

	store.mu.Lock()
	store.entries[key] = entry{value: value, writtenAt: m.now()}
	store.mu.Unlock()
}

// Len reports the number of stored entries in a domain, fresh or stale.
func (m *Manager) Len(domain Domain) int {
	store, ok := m.domains[domain]
	if !ok {
		return 0
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.entries)
}
