package application

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/reg4rd/classroom-booking/internal/booking"
)

// gridCache stores recently computed availability grids to avoid repeated
// projection for identical queries while reservations remain unchanged.
// Any booking mutation flushes it, so reads are at most ttl stale.
type gridCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]gridCacheEntry
}

type gridCacheEntry struct {
	grid      AvailabilityGrid
	expiresAt time.Time
}

func newGridCache(ttl time.Duration, maxEntries int, now func() time.Time) *gridCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &gridCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]gridCacheEntry),
	}
}

func (c *gridCache) Get(key string) (AvailabilityGrid, bool) {
	if c == nil {
		return AvailabilityGrid{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return AvailabilityGrid{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return AvailabilityGrid{}, false
	}
	return cloneGrid(entry.grid), true
}

func (c *gridCache) Store(key string, grid AvailabilityGrid) {
	if c == nil {
		return
	}
	cloned := cloneGrid(grid)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = gridCacheEntry{grid: cloned, expiresAt: expiry}
}

func (c *gridCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]gridCacheEntry)
	c.mu.Unlock()
}

func (c *gridCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *gridCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneGrid(grid AvailabilityGrid) AvailabilityGrid {
	out := grid
	out.Periods = clonePeriods(grid.Periods)
	if len(grid.Rows) > 0 {
		out.Rows = make([]RoomAvailability, len(grid.Rows))
		for i, row := range grid.Rows {
			cloned := row
			if len(row.Cells) > 0 {
				cloned.Cells = make([]SlotCell, len(row.Cells))
				copy(cloned.Cells, row.Cells)
			}
			out.Rows[i] = cloned
		}
	}
	return out
}

func clonePeriods(periods []booking.Period) []booking.Period {
	if len(periods) == 0 {
		return nil
	}
	out := make([]booking.Period, len(periods))
	copy(out, periods)
	return out
}

func buildGridCacheKey(params AvailabilityParams) string {
	builder := strings.Builder{}
	builder.WriteString(params.Principal.TeacherID)
	builder.WriteString("|")
	builder.WriteString(booking.FormatDate(params.Day))
	builder.WriteString("|")
	builder.WriteString(string(params.Session))
	builder.WriteString("|")
	builder.WriteString(strings.ToLower(strings.TrimSpace(params.RoomFilter)))
	builder.WriteString("|")
	for i, p := range params.FreeForPeriods {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString(strconv.Itoa(int(p)))
	}
	return builder.String()
}
