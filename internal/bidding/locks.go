package bidding

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type itemLock struct {
	mu       sync.Mutex
	refs     int
	lastUsed time.Time
}

// lockTable hands out one mutex per item id. Entries are created
// lazily and evicted after sitting idle; an entry is never evicted
// while a caller holds or waits on it.
type lockTable struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*itemLock
	idleTTL time.Duration
}

func newLockTable(idleTTL time.Duration) *lockTable {
	if idleTTL <= 0 {
		idleTTL = 5 * time.Minute
	}
	t := &lockTable{
		entries: make(map[uuid.UUID]*itemLock),
		idleTTL: idleTTL,
	}

	// Sweep idle entries periodically
	go t.sweep()

	return t
}

func (t *lockTable) sweep() {
	for {
		time.Sleep(t.idleTTL)
		t.mu.Lock()
		for id, entry := range t.entries {
			if entry.refs == 0 && time.Since(entry.lastUsed) > t.idleTTL {
				delete(t.entries, id)
			}
		}
		t.mu.Unlock()
	}
}

// acquire blocks until the per-item lock is held and returns the
// release function.
func (t *lockTable) acquire(id uuid.UUID) func() {
	t.mu.Lock()
	entry, ok := t.entries[id]
	if !ok {
		entry = &itemLock{}
		t.entries[id] = entry
	}
	entry.refs++
	t.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		t.mu.Lock()
		entry.refs--
		entry.lastUsed = time.Now()
		t.mu.Unlock()
	}
}

// size reports the number of live entries, for tests.
func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
