package preview

import "sync"

// DefaultCacheSize bounds the shared artifact cache.
const DefaultCacheSize = 50

// Cache maps request hashes to rendered artifacts. It is shared by every
// engine in the process. Entries are never updated in place; when the cache is
// full the oldest inserted entry is evicted, regardless of how recently it was
// read.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	entries  map[string]string
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]string, capacity),
	}
}

func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put inserts an entry. Putting a key that is already present is a no-op.
func (c *Cache) Put(key, artifact string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = artifact
	c.order = append(c.order, key)
	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
