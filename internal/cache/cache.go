package cache

import "time"

// DefaultTTL is how long a public lookup may be served from memory.
const DefaultTTL = 60 * time.Second

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) bool
	Clear()
}
