package otp

import (
	"sync"
	"time"
)

// Record is one issued reset code. A record past ExpiresAt is treated as
// absent by Get.
type Record struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// Store keeps at most one active record per email. The interface exists so
// the in-process map can be swapped for a durable backend without touching
// call sites.
type Store interface {
	// Put saves a record, overwriting any prior record for the same email.
	// Concurrent puts for one email race; last writer wins.
	Put(rec Record)
	// Get returns the active record for the email, if any.
	Get(email string) (Record, bool)
	// Delete removes the record for the email.
	Delete(email string)
}

// MemoryStore is the default Store: process-local and non-durable. Records
// are lost on restart, which matches the reset flow's contract (the user
// simply requests a new code).
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]Record
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]Record), now: time.Now}
}

func (s *MemoryStore) Put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.Email] = rec
}

func (s *MemoryStore) Get(email string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[email]
	if !ok {
		return Record{}, false
	}
	if s.now().After(rec.ExpiresAt) {
		// expired records are purged lazily on access
		delete(s.recs, email)
		return Record{}, false
	}
	return rec, true
}

func (s *MemoryStore) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, email)
}
