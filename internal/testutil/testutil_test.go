package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedClock(t *testing.T) {
	clock := NewFixedClock(time.Time{})
	assert.Equal(t, FixedTime, clock.Now())
	assert.Equal(t, clock.Now(), clock.Now(), "clock does not move on its own")

	clock.Advance(90 * time.Second)
	assert.Equal(t, FixedTime.Add(90*time.Second), clock.Now())
}

func TestSequentialIDGenerator(t *testing.T) {
	gen := NewSequentialIDGenerator("")
	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
}

func TestSequentialIDGeneratorThreadSafe(t *testing.T) {
	gen := NewSequentialIDGenerator("x")
	const n = 50

	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- gen.Generate()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestMediaPackage(t *testing.T) {
	pkg := MediaPackage()
	require.Len(t, pkg.Containers(), 2)
	assert.Equal(t, "Player", pkg.Containers()[0].Name)
	assert.Len(t, pkg.TypeCollections[0].Declarations(), 4)
}
