// Package cache keeps recently fetched days of conversions in memory.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/ndewijer/Conversions-Report-Backend/internal/model"
)

// DefaultTTL is how long a fetched day is served from memory.
const DefaultTTL = 10 * time.Minute

// entry is the stored value for one day.
type entry struct {
	key        model.DateKey
	insertedAt time.Time
	payload    model.ConversionsPayload
}

// DayCache maps a DateKey to the payload last fetched for it.
//
// Entries expire by TTL and are removed lazily when read. With a positive
// capacity the least recently used entry is evicted to make room; with
// capacity 0 the cache grows with the number of distinct days queried.
// A DayCache is safe for concurrent use.
type DayCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time

	entries map[model.DateKey]*list.Element
	// order holds *entry values, most recently used at the front.
	order *list.List
}

// Option configures a DayCache.
type Option func(*DayCache)

// WithCapacity bounds the number of stored days. Zero or less means unbounded.
func WithCapacity(capacity int) Option {
	return func(c *DayCache) { c.capacity = capacity }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *DayCache) { c.now = now }
}

// NewDayCache creates an empty cache whose entries live for ttl.
func NewDayCache(ttl time.Duration, opts ...Option) *DayCache {
	c := &DayCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[model.DateKey]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the payload stored for key if it is younger than the TTL.
// A stale entry is removed and reported as absent.
func (c *DayCache) Get(key model.DateKey) (model.ConversionsPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return model.ConversionsPayload{}, false
	}

	ent := el.Value.(*entry)
	if !c.fresh(ent) {
		c.removeElement(el)
		return model.ConversionsPayload{}, false
	}

	c.order.MoveToFront(el)
	return ent.payload, true
}

// Put stores payload for key with a fresh timestamp, replacing any existing entry.
func (c *DayCache) Put(key model.DateKey, payload model.ConversionsPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*entry)
		ent.insertedAt = now
		ent.payload = payload
		c.order.MoveToFront(el)
		return
	}

	if c.capacity > 0 && c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}

	el := c.order.PushFront(&entry{key: key, insertedAt: now, payload: payload})
	c.entries[key] = el
}

// Len returns the number of stored entries, stale ones included.
func (c *DayCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// PurgeExpired removes every stale entry and returns how many were dropped.
func (c *DayCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if !c.fresh(el.Value.(*entry)) {
			c.removeElement(el)
			removed++
		}
		el = next
	}
	return removed
}

func (c *DayCache) fresh(ent *entry) bool {
	return c.now().Sub(ent.insertedAt) < c.ttl
}

func (c *DayCache) removeElement(el *list.Element) {
	ent := c.order.Remove(el).(*entry)
	delete(c.entries, ent.key)
}
