package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugCache(t *testing.T) {
	c := NewSlugCache(1, time.Minute)

	_, found := c.Get("hello-world")
	assert.False(t, found)

	assert.True(t, c.Set("hello-world", []byte(`{"slug":"hello-world"}`)))
	value, found := c.Get("hello-world")
	assert.True(t, found)
	assert.Equal(t, `{"slug":"hello-world"}`, string(value))

	c.Clear()
	_, found = c.Get("hello-world")
	assert.False(t, found)
}

func TestTestCache(t *testing.T) {
	c := NewTestCache()
	c.Set("a", []byte("1"))
	_, found := c.Get("a")
	assert.True(t, found)
	assert.Equal(t, 1, c.Hits)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, c.Clears)
}
