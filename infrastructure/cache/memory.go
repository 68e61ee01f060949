package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
)

// InMemoryCache is a size-bounded LRU cache with per-entry expiry. It backs
// the analytics cache when Redis is not configured.
type InMemoryCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
	stopCh   chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewInMemoryCache creates a cache holding at most capacity entries and
// starts the expiry sweeper.
func NewInMemoryCache(capacity int) *InMemoryCache {
	if capacity <= 0 {
		capacity = 256
	}
	c := &InMemoryCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		stopCh:   make(chan struct{}),
	}
	go c.cleanupExpired(time.Minute)
	return c
}

var _ ports.Cache = (*InMemoryCache)(nil)

// Get retrieves a value from cache
func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	item := el.Value.(*cacheItem)
	if item.expired(time.Now()) {
		c.removeElement(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return item.value, true
}

// Set stores a value; a zero ttl never expires
func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if el, ok := c.items[key]; ok {
		item := el.Value.(*cacheItem)
		item.value = value
		item.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return nil
	}

	c.items[key] = c.order.PushFront(&cacheItem{key: key, value: value, expiresAt: expiresAt})
	for c.order.Len() > c.capacity {
		c.removeElement(c.order.Back())
	}
	return nil
}

// Delete removes a value from cache
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stop ends the expiry sweeper
func (c *InMemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *InMemoryCache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheItem).key)
}

func (i *cacheItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// cleanupExpired periodically removes expired items
func (c *InMemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for el := c.order.Back(); el != nil; {
				prev := el.Prev()
				if el.Value.(*cacheItem).expired(now) {
					c.removeElement(el)
				}
				el = prev
			}
			c.mu.Unlock()
		}
	}
}
