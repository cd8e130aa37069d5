package store

import (
	"context"
	"sync"
)

// Memory is the in-process Store backend. A single mutex makes individual
// reads and writes atomic; read-modify-write sequences across calls stay
// subject to last-write-wins, same as any other backend.
type Memory struct {
	mu       sync.RWMutex
	data     map[string][]byte
	watchers map[string][]chan struct{}
}

func NewMemory() *Memory {
	return &Memory{
		data:     make(map[string][]byte),
		watchers: make(map[string][]chan struct{}),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored

	watchers := make([]chan struct{}, len(m.watchers[key]))
	copy(watchers, m.watchers[key])

	m.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

func (m *Memory) Watch(key string) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan struct{}, 1)
	m.watchers[key] = append(m.watchers[key], ch)

	return ch
}

func (m *Memory) Close() error {
	return nil
}
