package stock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/id"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := newKeyedMutex()
	recordID := id.New()

	const workers = 100
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := km.Lock(recordID)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedMutex_DifferentKeysDoNotBlock(t *testing.T) {
	km := newKeyedMutex()

	unlockA := km.Lock(id.New())
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := km.Lock(id.New())
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyedMutex_ReleasesEntryWhenIdle(t *testing.T) {
	km := newKeyedMutex()
	recordID := id.New()

	unlock := km.Lock(recordID)
	km.mu.Lock()
	require.Len(t, km.locks, 1)
	km.mu.Unlock()

	unlock()

	km.mu.Lock()
	assert.Empty(t, km.locks, "idle locks should be removed from the map")
	km.mu.Unlock()
}

func TestKeyedMutex_KeepsEntryWhileWaitersRemain(t *testing.T) {
	km := newKeyedMutex()
	recordID := id.New()

	unlock := km.Lock(recordID)

	acquired := make(chan struct{})
	go func() {
		u := km.Lock(recordID)
		close(acquired)
		u()
	}()

	// Wait until the second goroutine is registered as a holder.
	for {
		km.mu.Lock()
		refs := km.locks[recordID].refs
		km.mu.Unlock()
		if refs == 2 {
			break
		}
	}

	unlock()
	<-acquired

	// Once the last holder leaves, the entry is gone.
	for {
		km.mu.Lock()
		_, ok := km.locks[recordID]
		km.mu.Unlock()
		if !ok {
			break
		}
	}
}
