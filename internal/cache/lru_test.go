package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetSet(t *testing.T) {
	c := New[string](2)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "alpha")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", v)

	c.Set("a", "again")
	v, _ = c.Get("a")
	assert.Equal(t, "again", v)

	assert.Equal(t, Stats{Size: 1, Hits: 2, Misses: 1}, c.Stats())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch a so b becomes the eviction candidate.
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Stats().Size)
}

func TestLRU_DefaultSize(t *testing.T) {
	c := New[int](0)
	for i := 0; i < DefaultMaxEntries+5; i++ {
		c.Set(string(rune('A'+i)), i)
	}
	assert.Equal(t, DefaultMaxEntries, c.Stats().Size)
}

func TestLRU_Concurrent(t *testing.T) {
	c := New[int](8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%10))
			c.Set(key, i)
			_, _ = c.Get(key)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Stats().Size, 8)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("date,description,amount\n"))
	b := Fingerprint([]byte("date,description,amount\n"))
	c := Fingerprint([]byte("date,description,amount\r\n"))

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
