package service

import (
	"sync"

	"github.com/google/uuid"
)

// listLock is one list's exclusion lock plus the number of goroutines
// holding or waiting for it.
type listLock struct {
	mu   sync.Mutex
	refs int
}

// listLocker hands out per-list exclusion locks. Lock entries are created
// on demand and removed once the last holder releases, so the map stays
// proportional to the number of lists under concurrent mutation rather
// than the number of lists that ever existed.
type listLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*listLock
}

func newListLocker() *listLocker {
	return &listLocker{locks: make(map[uuid.UUID]*listLock)}
}

// lock acquires the exclusion lock for the given list, blocking until any
// in-flight mutation on the same list completes. Locks on different lists
// never contend.
func (l *listLocker) lock(listID uuid.UUID) {
	l.mu.Lock()
	entry, ok := l.locks[listID]
	if !ok {
		entry = &listLock{}
		l.locks[listID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// unlock releases the list's exclusion lock, dropping the entry when no
// other goroutine is holding or waiting for it.
func (l *listLocker) unlock(listID uuid.UUID) {
	l.mu.Lock()
	entry, ok := l.locks[listID]
	if !ok {
		l.mu.Unlock()
		panic("unlock of unheld list lock")
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, listID)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
