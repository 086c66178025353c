// Package portcache memoizes port scans for a short window so repeated
// queries (one per keystroke in the picker) do not rescan the OS each time.
package portcache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/productdevbook/portkiller/internal/scanner"
	"github.com/rs/zerolog/log"
)

// DefaultWindow is how long a scan stays fresh
const DefaultWindow = 2 * time.Second

// Cache wraps a scanner with one slot per include-system-ports value.
type Cache struct {
	scanner scanner.Scanner
	window  time.Duration

	mu    sync.Mutex // serializes check-then-fill so concurrent misses scan once
	slots *cache.Cache
}

// New returns a cache over s. A non-positive window uses DefaultWindow.
func New(s scanner.Scanner, window time.Duration) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Cache{
		scanner: s,
		window:  window,
		// expired slots are dropped on read; no janitor goroutine
		slots: cache.New(window, 0),
	}
}

// Scan returns the memoized ports for includeSystem while they are younger
// than the window, otherwise it rescans and replaces that slot.
func (c *Cache) Scan(ctx context.Context, includeSystem bool) []scanner.Port {
	key := strconv.FormatBool(includeSystem)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.slots.Get(key); ok {
		return cached.([]scanner.Port)
	}

	ports := c.scanner.Scan(ctx, includeSystem)
	c.slots.Set(key, ports, c.window)
	log.Debug().Bool("system", includeSystem).Int("ports", len(ports)).Msg("port scan cached")

	return ports
}

// Invalidate drops both slots, e.g. after a process was killed
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots.Flush()
}
