package booking

import "sync"

// keyLatch serializes bookings that share an idempotency key. Holding the
// latch across the lookup-then-save window guarantees that exactly one of N
// concurrent submissions constructs the record; the rest observe it via the
// idempotency lookup once the winner releases.
type keyLatch struct {
	mu   sync.Mutex
	held map[string]*latchEntry
}

type latchEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLatch() *keyLatch {
	return &keyLatch{held: make(map[string]*latchEntry)}
}

// acquire blocks until the latch for key is free and returns the release
// function. Entries are reference-counted so the map does not grow with
// dead keys.
func (l *keyLatch) acquire(key string) (release func()) {
	l.mu.Lock()
	e, ok := l.held[key]
	if !ok {
		e = &latchEntry{}
		l.held[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.held, key)
		}
		l.mu.Unlock()
	}
}
