package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReadThrough(t *testing.T) {
	c := NewCache(time.Minute)
	assert.Nil(t, c.Get(1))

	c.Put(&Song{ID: 1, Title: "one", AudioURL: "https://cdn/1"})
	got := c.Get(1)
	require.NotNil(t, got)
	assert.Equal(t, "one", got.Title)
}

func TestCacheEvictsStaleEntriesOnRead(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put(&Song{ID: 1, Title: "one"})
	require.NotNil(t, c.Get(1))

	now = now.Add(2 * time.Minute)
	assert.Nil(t, c.Get(1))
	assert.Zero(t, c.Len(), "stale entry must be evicted, not just hidden")
}

func TestCacheFreshEntrySurvivesReads(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put(&Song{ID: 1})
	now = now.Add(30 * time.Second)
	assert.NotNil(t, c.Get(1))
	assert.Equal(t, 1, c.Len())
}

func TestCacheIgnoresNil(t *testing.T) {
	c := NewCache(time.Minute)
	c.Put(nil)
	assert.Zero(t, c.Len())
}
