package review

import (
	"context"
	"sync"
	"time"
)

// Store is the load/save boundary for staged reviews, keyed by user.
// Load returns ErrNoReview when nothing is staged.
type Store interface {
	Load(ctx context.Context, userID string) (*Buffer, error)
	Save(ctx context.Context, userID string, b *Buffer) error
	Clear(ctx context.Context, userID string) error
}

type memoryEntry struct {
	buf     *Buffer
	expires time.Time
}

// MemoryStore keeps reviews in process memory. Reviews are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns a store whose entries expire after ttl. A ttl of
// zero keeps entries until they are cleared.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, userID string) (*Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		return nil, ErrNoReview
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, userID)
		return nil, ErrNoReview
	}
	return e.buf.clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, userID string, b *Buffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{buf: b.clone()}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[userID] = e
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	return nil
}
