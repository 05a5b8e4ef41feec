package references

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/maubry/ouvra/pkg/models"
)

// DefaultTTL is how long a snapshot stays fresh.
const DefaultTTL = 5 * time.Minute

// Source provides the raw reference data the cache snapshots.
type Source interface {
	FetchReferenceData(ctx context.Context) (*models.ReferenceData, error)
}

// Cache is a TTL cache over a Source. Concurrent callers hitting an expired
// cache share a single in-flight fetch. A fetch error is returned to every
// waiting caller; expired snapshots are not served on error.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	snapshot *Snapshot
	expires  time.Time
}

// NewCache builds a cache with the default TTL.
func NewCache(source Source) *Cache {
	return NewCacheWithTTL(source, DefaultTTL)
}

func NewCacheWithTTL(source Source, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the current snapshot, fetching when absent or expired.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	snap, expires := c.snapshot, c.expires
	c.mu.RUnlock()

	if snap != nil && c.now().Before(expires) {
		return snap, nil
	}

	v, err, _ := c.group.Do("references", func() (any, error) {
		// Another caller may have refreshed while we queued.
		c.mu.RLock()
		snap, expires := c.snapshot, c.expires
		c.mu.RUnlock()

		if snap != nil && c.now().Before(expires) {
			return snap, nil
		}

		// The flight is shared across callers; detach it from the first
		// caller's cancellation so one aborted request cannot fail the rest.
		data, err := c.source.FetchReferenceData(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		fresh := BuildSnapshot(data)

		c.mu.Lock()
		c.snapshot = fresh
		c.expires = c.now().Add(c.ttl)
		c.mu.Unlock()

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Snapshot), nil
}

// Invalidate drops the cached snapshot; the next Get refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.expires = time.Time{}
	c.mu.Unlock()
}
