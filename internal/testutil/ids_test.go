package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDs_StartsAtOne(t *testing.T) {
	ids := NewSequentialIDs("w")
	assert.Equal(t, int64(0), ids.Current())
	assert.Equal(t, "w-1", ids.Generate())
	assert.Equal(t, "w-2", ids.Generate())
	assert.Equal(t, int64(2), ids.Current())
}

func TestSequentialIDs_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "id-1", NewSequentialIDs("").Generate())
}

func TestSequentialIDs_Reset(t *testing.T) {
	ids := NewSequentialIDs("x")
	ids.Generate()
	ids.Generate()

	ids.Reset()

	assert.Equal(t, int64(0), ids.Current())
	assert.Equal(t, "x-1", ids.Generate())
}

func TestSequentialIDs_ConcurrentUnique(t *testing.T) {
	ids := NewSequentialIDs("c")
	const n = 100

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ids.Generate()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	assert.Equal(t, int64(n), ids.Current())
}
