package cache

import "sync"

var _ Cache = (*TestCache)(nil)

// TestCache is an unbounded map cache, handy in handler tests.
type TestCache struct {
	mutex  sync.Mutex
	values map[string][]byte
	Hits   int
	Clears int
}

func NewTestCache() *TestCache {
	return &TestCache{
		values: make(map[string][]byte),
	}
}

func (c *TestCache) Get(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	v, ok := c.values[key]
	if ok {
		c.Hits++
	}
	return v, ok
}

func (c *TestCache) Set(key string, value []byte) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.values[key] = value
	return true
}

func (c *TestCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.values = make(map[string][]byte)
	c.Clears++
}

func (c *TestCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.values)
}
