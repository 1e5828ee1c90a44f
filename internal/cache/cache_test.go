package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute, time.Minute)

	_, ok := c.Get("releases")
	assert.False(t, ok)

	c.Set("releases", []string{"a.zip"})
	v, ok := c.Get("releases")
	assert.True(t, ok)
	assert.Equal(t, []string{"a.zip"}, v)
	assert.Equal(t, 1, c.ItemCount())
}

func TestCacheExpiry(t *testing.T) {
	c := New(10*time.Millisecond, time.Hour)
	c.Set("k", 1)
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCacheClear(t *testing.T) {
	c := NewDefault()
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	assert.Equal(t, 0, c.ItemCount())
}
