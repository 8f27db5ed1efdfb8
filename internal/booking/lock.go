package booking

import "sync"

// keyedMutex serialises critical sections per string key.  The engine
// keys it by (event ID, booking date) so two concurrent requests for the
// same event and date can never both pass the seat-conflict check before
// either commits, while requests on disjoint keys proceed fully in
// parallel.  Entries are reference-counted and removed once the last
// holder releases, so the map does not grow with the key space.
type keyedMutex struct {
    mu    sync.Mutex
    locks map[string]*keyedLockEntry
}

type keyedLockEntry struct {
    mu   sync.Mutex
    refs int
}

func newKeyedMutex() *keyedMutex {
    return &keyedMutex{locks: make(map[string]*keyedLockEntry)}
}

// Lock acquires the mutex for key, blocking while another caller holds it.
func (k *keyedMutex) Lock(key string) {
    k.mu.Lock()
    e, ok := k.locks[key]
    if !ok {
        e = &keyedLockEntry{}
        k.locks[key] = e
    }
    e.refs++
    k.mu.Unlock()

    e.mu.Lock()
}

// Unlock releases the mutex for key and drops the entry when no other
// caller is waiting on it.
func (k *keyedMutex) Unlock(key string) {
    k.mu.Lock()
    e, ok := k.locks[key]
    if ok {
        e.refs--
        if e.refs == 0 {
            delete(k.locks, key)
        }
    }
    k.mu.Unlock()

    if ok {
        e.mu.Unlock()
    }
}
