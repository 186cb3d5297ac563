package application

import (
	"strings"
	"sync"
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/worktime"
)

// reportCache stores recently computed period reports to avoid re-running
// reconciliation and aggregation for identical queries while the underlying
// rows remain unchanged. Attendance writes invalidate the whole cache.
type reportCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]reportCacheEntry
}

type reportCacheEntry struct {
	report    Report
	expiresAt time.Time
}

func newReportCache(ttl time.Duration, maxEntries int, now func() time.Time) *reportCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &reportCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]reportCacheEntry),
	}
}

func (c *reportCache) Get(key string) (Report, bool) {
	if c == nil {
		return Report{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Report{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return Report{}, false
	}
	return cloneReport(entry.report), true
}

func (c *reportCache) Store(key string, report Report) {
	if c == nil {
		return
	}
	cloned := cloneReport(report)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = reportCacheEntry{report: cloned, expiresAt: expiry}
}

func (c *reportCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]reportCacheEntry)
	c.mu.Unlock()
}

func (c *reportCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *reportCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneReport(report Report) Report {
	if len(report.Days) == 0 {
		return report
	}
	days := make([]DailyReportEntry, len(report.Days))
	copy(days, report.Days)
	report.Days = days
	return report
}

func buildReportCacheKey(userID string, period ReportPeriod, from, to worktime.Date) string {
	builder := strings.Builder{}
	builder.WriteString(userID)
	builder.WriteString("|")
	builder.WriteString(string(period))
	builder.WriteString("|")
	builder.WriteString(from.String())
	builder.WriteString("|")
	builder.WriteString(to.String())
	return builder.String()
}
