package store

import (
	"context"
	"sync"
)

// MemoryRepo is an in-process Repo. PutErr, when set, makes every Put fail.
type MemoryRepo struct {
	mu     sync.Mutex
	data   map[string]string
	puts   int
	PutErr error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]string)}
}

func (m *MemoryRepo) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryRepo) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.data[key] = value
	m.puts++
	return nil
}

// Puts returns how many writes succeeded.
func (m *MemoryRepo) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func (m *MemoryRepo) Close() error { return nil }
