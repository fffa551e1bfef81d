package store

import (
	"sync"

	"TradeBook/internal/trade"
)

// MemoryStore is a process-lifetime trade record store with two unique
// indices: by trade ID and by idempotency key. A single RWMutex guards both
// maps, so no reader ever observes one index updated and not the other.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*trade.Record
	byKey map[string]*trade.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*trade.Record),
		byKey: make(map[string]*trade.Record),
	}
}

// Save inserts or overwrites the record by trade ID and, when the record
// carries a non-empty idempotency key, updates that index in the same
// critical section. The store keeps its own clone.
func (s *MemoryStore) Save(rec *trade.Record) error {
	cp := rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Overwriting a record whose idempotency key changed must not leave a
	// stale key entry behind.
	if prev, ok := s.byID[cp.TradeID]; ok && prev.IdempotencyKey != "" && prev.IdempotencyKey != cp.IdempotencyKey {
		delete(s.byKey, prev.IdempotencyKey)
	}

	s.byID[cp.TradeID] = cp
	if cp.IdempotencyKey != "" {
		s.byKey[cp.IdempotencyKey] = cp
	}
	return nil
}

// GetByID returns a clone of the record, or false when absent.
func (s *MemoryStore) GetByID(id string) (*trade.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// GetByIdempotencyKey returns a clone of the record stored under key, or
// false when absent.
func (s *MemoryStore) GetByIdempotencyKey(key string) (*trade.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// GetByCounterparty returns clones of every record whose counterparty field
// equals name (literal match, unordered).
func (s *MemoryStore) GetByCounterparty(name string) []*trade.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*trade.Record
	for _, rec := range s.byID {
		if rec.Counterparty == name {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// GetAll returns an unordered snapshot of all records at call time.
func (s *MemoryStore) GetAll() []*trade.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*trade.Record, 0, len(s.byID))
	for _, rec := range s.byID {
		out = append(out, rec.Clone())
	}
	return out
}

// Exists reports whether a record is stored under id.
func (s *MemoryStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// Delete removes the record from both indices atomically. Unknown IDs are a
// no-op.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return
	}
	if rec.IdempotencyKey != "" {
		delete(s.byKey, rec.IdempotencyKey)
	}
	delete(s.byID, id)
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
