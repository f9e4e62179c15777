package utils

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetNoDuplicates(t *testing.T) {
	s := NewSet[string]()

	assert.True(t, s.Add("a"), "first Add should return true")
	assert.False(t, s.Add("a"), "second Add of same item should return false")
	assert.Equal(t, 1, s.Size())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("b"))
}

func TestSetKeepsInsertionOrder(t *testing.T) {
	s := NewSet("c", "a", "c", "b", "a")
	assert.Equal(t, []string{"c", "a", "b"}, s.Items())
}

func TestSetStructKeys(t *testing.T) {
	type key struct{ a, b string }
	s := NewSet(key{"x", ""}, key{"x", ""}, key{"x", "y"})
	assert.Equal(t, 2, s.Size())
}

func TestSetConcurrency(t *testing.T) {
	s := NewSet[string]()
	var added int64
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Add("same") {
				atomic.AddInt64(&added, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), added)
}
