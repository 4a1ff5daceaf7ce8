package cache

import (
	"sync"

	"github.com/epeers/whattheyhold/internal/models"
)

// FundCache provides an in-memory L1 cache of fund compositions, keyed by uppercase ticker.
// Entries live for the lifetime of the process and are replaced whole, never mutated.
type FundCache struct {
	funds map[string]*models.FundResponse
	mu    sync.RWMutex
}

// NewFundCache creates a new in-memory fund cache
func NewFundCache() *FundCache {
	return &FundCache{
		funds: make(map[string]*models.FundResponse),
	}
}

// Get retrieves a cached fund if present
func (c *FundCache) Get(ticker string) (*models.FundResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, exists := c.funds[ticker]
	return data, exists
}

// Put caches a fund, replacing any previous entry for the ticker
func (c *FundCache) Put(ticker string, data *models.FundResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.funds[ticker] = data
}
