package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapLock(t *testing.T) {
	var (
		mu      sync.RWMutex
		counter int64
		wg      sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				WrapLock(&mu, func() {
					counter++
				})
			}
		}()
		go func() {
			defer wg.Done()
			WrapRLock(&mu, func() {
				assert.GreaterOrEqual(t, counter, int64(0))
			})
		}()
	}

	wg.Wait()
	assert.Equal(t, int64(800), counter)
}
