package stock

import (
	"sync"

	"stockroom/internal/core/id"
)

// keyedMutex serializes the read-validate-write sequence per stock record.
// Adjustments against different records never contend: each record gets its
// own mutex, created on demand and released when the last holder leaves.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[id.ID]*recordLock
}

type recordLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[id.ID]*recordLock)}
}

// Lock acquires the mutex for recordID and returns the matching unlock.
func (k *keyedMutex) Lock(recordID id.ID) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[recordID]
	if !ok {
		l = &recordLock{}
		k.locks[recordID] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, recordID)
		}
		k.mu.Unlock()
	}
}
