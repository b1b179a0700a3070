package store

import (
	"context"
	"sync"

	"github.com/aseptimu/codepool-shortener/internal/app/service"
)

// InMemoryStore - основное хранилище в памяти. Позволяет имитировать недоступность через SetErr.
type InMemoryStore struct {
	mu       sync.RWMutex
	urls     map[string]string
	settings map[string]int64
	err      error
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		urls:     make(map[string]string),
		settings: make(map[string]int64),
	}
}

// SetErr заставляет все последующие операции возвращать err. nil восстанавливает работу.
func (m *InMemoryStore) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *InMemoryStore) InsertMapping(_ context.Context, code, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.urls[code]; !ok {
		m.urls[code] = target
	}
	return nil
}

func (m *InMemoryStore) DeleteMapping(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.urls, code)
	return nil
}

func (m *InMemoryStore) UpsertSetting(_ context.Context, name string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.settings[name] = value
	return nil
}

func (m *InMemoryStore) Mappings(_ context.Context) ([]service.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return sortedMappings(m.urls), nil
}

func (m *InMemoryStore) Settings(_ context.Context) ([]service.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return sortedSettings(m.settings), nil
}

func (m *InMemoryStore) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *InMemoryStore) Close() error {
	return nil
}
