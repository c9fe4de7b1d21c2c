package paybill

import (
	"context"
	"sync"
	"time"
)

// ICorrelationStore links the validation-phase reference to the payment
// phase. All mutating operations are atomic per key; no two callers may
// ever both run the create step for the same key.
type ICorrelationStore interface {
	// LookupBinding returns the workflow binding for key, if one exists.
	LookupBinding(ctx context.Context, key string) (string, bool, error)

	// GetOrCreateBinding atomically claims creation for key. The caller
	// that wins runs create exactly once and its result is stored and
	// returned with created=true. Losers wait for the winner and get the
	// stored id with created=false. If the winner's create fails, one of
	// the waiters takes over the claim.
	GetOrCreateBinding(ctx context.Context, key string, create func(context.Context) (string, error)) (id string, created bool, err error)

	// RecordValidationSuccess marks the key reconciled and stashes the
	// validation transaction id, binding it as the workflow reference when
	// no binding exists yet. Idempotent.
	RecordValidationSuccess(ctx context.Context, key, transactionID string) error

	// ConsumeReconciledFlag atomically reads and clears the reconciled
	// flag for key.
	ConsumeReconciledFlag(ctx context.Context, key string) (bool, error)
}

type memoryEntry struct {
	mu            sync.Mutex
	binding       string
	bound         bool
	pending       chan struct{}
	reconciled    bool
	transactionID string
	expiresAt     time.Time
}

// MemoryStore is the in-process correlation store. Entries carry their
// own lock so unrelated keys never serialize on each other; the map
// mutex only guards entry lookup.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry
}

// NewMemoryStore builds a store whose entries expire ttl after their
// last write. A zero ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
	}
}

func (s *MemoryStore) entry(key string) *memoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if ok && !e.expired() {
		return e
	}
	e = &memoryEntry{}
	s.entries[key] = e
	return e
}

func (e *memoryEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

func (e *memoryEntry) touch(ttl time.Duration) {
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
}

func (s *MemoryStore) LookupBinding(_ context.Context, key string) (string, bool, error) {
	e := s.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.binding, e.bound, nil
}

func (s *MemoryStore) GetOrCreateBinding(
	ctx context.Context, key string, create func(context.Context) (string, error),
) (string, bool, error) {
	e := s.entry(key)

	for {
		e.mu.Lock()
		if e.bound {
			id := e.binding
			e.mu.Unlock()
			return id, false, nil
		}

		if e.pending == nil {
			done := make(chan struct{})
			e.pending = done
			e.mu.Unlock()

			id, err := create(ctx)

			e.mu.Lock()
			e.pending = nil
			if err == nil {
				e.binding = id
				e.bound = true
				e.touch(s.ttl)
			}
			close(done)
			e.mu.Unlock()
			return id, err == nil, err
		}

		wait := e.pending
		e.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}
}

func (s *MemoryStore) RecordValidationSuccess(_ context.Context, key, transactionID string) error {
	e := s.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.bound {
		e.binding = transactionID
		e.bound = true
	}
	e.reconciled = true
	e.transactionID = transactionID
	e.touch(s.ttl)
	return nil
}

func (s *MemoryStore) ConsumeReconciledFlag(_ context.Context, key string) (bool, error) {
	e := s.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	reconciled := e.reconciled
	e.reconciled = false
	return reconciled, nil
}
