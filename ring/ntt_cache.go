package ring

import (
	"errors"
	"sync"
)

// ErrCachePoisoned is returned by every access to an NTTCache whose
// population panicked while holding the write lock.
var ErrCachePoisoned = errors.New("ntt cache is poisoned")

type nttCacheKey struct {
	modulus         uint64
	root            uint64
	cyclotomicOrder int
}

// NTTCache stores NTTTables keyed by (modulus, root of unity, cyclotomic order).
// It is safe for concurrent use: lookups take a read lock and the first
// population of an entry takes the write lock.
//
// If the population of an entry panics, the cache is poisoned and every
// later access returns ErrCachePoisoned, until Reset is called.
type NTTCache struct {
	mu       sync.RWMutex
	poisoned bool
	tables   map[nttCacheKey]*NTTTable

	// newTable generates the entries, replaced in tests.
	newTable func(modulus, root uint64, cyclotomicOrder int) (*NTTTable, error)
}

// NewNTTCache allocates an empty NTTCache.
func NewNTTCache() *NTTCache {
	return &NTTCache{
		tables:   map[nttCacheKey]*NTTTable{},
		newTable: NewNTTTable,
	}
}

// Get returns the NTTTable of the given parameters, generating it on the first call.
func (c *NTTCache) Get(modulus, root uint64, cyclotomicOrder int) (table *NTTTable, err error) {

	key := nttCacheKey{modulus: modulus, root: root, cyclotomicOrder: cyclotomicOrder}

	c.mu.RLock()

	if c.poisoned {
		c.mu.RUnlock()
		return nil, ErrCachePoisoned
	}

	table, ok := c.tables[key]

	c.mu.RUnlock()

	if ok {
		return table, nil
	}

	return c.populate(key)
}

func (c *NTTCache) populate(key nttCacheKey) (table *NTTTable, err error) {

	c.mu.Lock()

	completed := false

	defer func() {
		if !completed {
			c.poisoned = true
		}
		c.mu.Unlock()
	}()

	if c.poisoned {
		completed = true
		return nil, ErrCachePoisoned
	}

	// Another goroutine may have populated the entry in the meantime.
	if table, ok := c.tables[key]; ok {
		completed = true
		return table, nil
	}

	table, err = c.newTable(key.modulus, key.root, key.cyclotomicOrder)

	if err == nil {
		c.tables[key] = table
	}

	completed = true

	return
}

// Len returns the number of tables stored in the cache.
func (c *NTTCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Poisoned returns true if the cache is poisoned.
func (c *NTTCache) Poisoned() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.poisoned
}

// Reset empties the cache and clears its poisoned state.
func (c *NTTCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.poisoned = false
	c.tables = map[nttCacheKey]*NTTTable{}
}
