package store

import (
	"context"
	"sync"
)

// MemoryDB is a process-local DB used when no database path is configured.
type MemoryDB struct {
	mu      sync.Mutex
	docs    map[string][]byte
	history []HistoryEntry
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{docs: make(map[string][]byte)}
}

func (m *MemoryDB) Close() error                   { return nil }
func (m *MemoryDB) Migrate() error                 { return nil }
func (m *MemoryDB) Ping(ctx context.Context) error { return nil }

func (m *MemoryDB) PutDocument(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryDB) GetDocument(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryDB) AppendHistory(ctx context.Context, entry HistoryEntry, keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]HistoryEntry{entry}, m.history...)
	if keep > 0 && len(m.history) > keep {
		m.history = m.history[:keep]
	}
	return nil
}

func (m *MemoryDB) ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]HistoryEntry, n)
	copy(out, m.history[:n])
	return out, nil
}

func (m *MemoryDB) ClearHistory(ctx context.Context) error {
	m.mu.Lock()
	m.history = nil
	m.mu.Unlock()
	return nil
}
