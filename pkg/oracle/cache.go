// Package oracle maintains the keeper's view of oracle prices: an in-memory
// cache fed by a websocket price stream, persisted through the snapshot
// store so a restarted keeper can evaluate immediately.
package oracle

import (
	"sync"

	"github.com/vperp/vperp/pkg/types"
)

// Cache holds the latest oracle observation per market. Safe for concurrent
// readers; the feed is the only writer.
type Cache struct {
	mu     sync.RWMutex
	prices map[uint16]*types.OraclePriceData
}

func NewCache() *Cache {
	return &Cache{prices: make(map[uint16]*types.OraclePriceData)}
}

func (c *Cache) Set(marketIndex uint16, data *types.OraclePriceData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[marketIndex] = data
}

func (c *Cache) Get(marketIndex uint16) (*types.OraclePriceData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.prices[marketIndex]
	return d, ok
}

// Slot returns the highest slot observed across all markets, which the
// keeper uses as its evaluation slot.
func (c *Cache) Slot() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var max uint64
	for _, d := range c.prices {
		if d.Slot > max {
			max = d.Slot
		}
	}
	return max
}
