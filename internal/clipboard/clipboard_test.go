package clipboard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetClear(t *testing.T) {
	c := New()
	require.False(t, c.HasData())

	c.Set("/a.txt", OpCut, "1")
	e, ok := c.Get()
	require.True(t, ok)
	require.Equal(t, Entry{Path: "/a.txt", Op: OpCut, Owner: "1"}, e)
	require.True(t, c.HasData())

	c.Clear()
	require.False(t, c.HasData())
	_, ok = c.Get()
	require.False(t, ok)

	// Clearing an empty clipboard is harmless.
	c.Clear()
	require.False(t, c.HasData())
}

func TestSetOverwrites(t *testing.T) {
	c := New()
	c.Set("/a.txt", OpCut, "1")
	c.Set("/b.txt", OpCopy, "2")

	e, ok := c.Get()
	require.True(t, ok)
	require.Equal(t, Entry{Path: "/b.txt", Op: OpCopy, Owner: "2"}, e)
}

func TestClearIfOnlyMatchingEntry(t *testing.T) {
	c := New()
	c.Set("/a.txt", OpCut, "1")
	stale, _ := c.Get()
	c.Set("/b.txt", OpCut, "2")

	require.False(t, c.ClearIf(stale))
	require.True(t, c.HasData())

	current, _ := c.Get()
	require.True(t, c.ClearIf(current))
	require.False(t, c.HasData())
}

func TestVersionTracksChanges(t *testing.T) {
	c := New()
	v0 := c.Version()
	c.Set("/a", OpCopy, "1")
	v1 := c.Version()
	require.Greater(t, v1, v0)
	c.Clear()
	require.Greater(t, c.Version(), v1)
	v2 := c.Version()
	c.Clear()
	require.Equal(t, v2, c.Version())
}

func TestConcurrentSetKeepsOneEntry(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				c.Set("/even", OpCopy, "a")
			} else {
				c.Set("/odd", OpCut, "b")
			}
		}(i)
	}
	wg.Wait()

	e, ok := c.Get()
	require.True(t, ok)
	require.Contains(t, []Entry{
		{Path: "/even", Op: OpCopy, Owner: "a"},
		{Path: "/odd", Op: OpCut, Owner: "b"},
	}, e)
}
