package service

import (
	"context"
	"sync"
	"testing"

	"github.com/aseptimu/codepool-shortener/internal/app/utils"
	"go.uber.org/zap"
)

// memStore - потокобезопасная реализация CodeStore и StoreURLSetter для тестов.
type memStore struct {
	mu       sync.Mutex
	urls     map[string]string
	settings map[string]int64
	history  []int64
	err      error
}

func newMemStore() *memStore {
	return &memStore{urls: make(map[string]string), settings: make(map[string]int64)}
}

func (m *memStore) GetSetting(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.settings[name], nil
}

func (m *memStore) SetSetting(_ context.Context, name string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.settings[name] = value
	if name == CounterSetting {
		m.history = append(m.history, value)
	}
	return nil
}

func (m *memStore) Codes(_ context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	codes := make(map[string]struct{}, len(m.urls))
	for code := range m.urls {
		codes[code] = struct{}{}
	}
	return codes, nil
}

func (m *memStore) Bind(_ context.Context, code, target string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.urls[code]; ok {
		return false, nil
	}
	m.urls[code] = target
	return true, nil
}

func (m *memStore) counter() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings[CounterSetting]
}

func (m *memStore) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func code(t testing.TB, n uint64) string {
	t.Helper()
	c, err := utils.EncodeBase62(n, 6)
	if err != nil {
		t.Fatalf("encode %d: %v", n, err)
	}
	return c
}

func newTestPool(store CodeStore, cfg PoolConfig) *CodePool {
	if cfg.CodeLength == 0 {
		cfg.CodeLength = 6
	}
	return NewCodePool(store, cfg, zap.NewNop().Sugar())
}

// poolSnapshot возвращает копию содержимого пула.
func poolSnapshot(p *CodePool) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.codes...)
}
