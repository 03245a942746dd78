package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

var _ KV = (*Memory)(nil)

// Memory is an in-process KV used in tests and when no redis is configured.
// Values are stored JSON-encoded so Get behaves exactly like the redis cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(ctx context.Context, k string, v any) (bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[k]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, k)
		m.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(entry.data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(ctx context.Context, k string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[k] = entry
	m.mu.Unlock()
	return nil
}

func (m *Memory) Del(ctx context.Context, k string) error {
	m.mu.Lock()
	delete(m.entries, k)
	m.mu.Unlock()
	return nil
}
