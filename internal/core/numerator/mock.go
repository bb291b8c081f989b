package numerator

import (
	"context"
	"sync"
)

// MockGenerator is an in-memory Generator for unit tests.
type MockGenerator struct {
	GetNextNumberFunc func(ctx context.Context, cfg Config, key Key) (string, error)

	mu   sync.Mutex
	seqs map[string]int64
}

// GetNextNumber implements Generator. Without an override it counts per key.
func (m *MockGenerator) GetNextNumber(ctx context.Context, cfg Config, key Key) (string, error) {
	if m.GetNextNumberFunc != nil {
		return m.GetNextNumberFunc(ctx, cfg, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seqs == nil {
		m.seqs = make(map[string]int64)
	}
	m.seqs[key.String()]++
	return cfg.Format(key, m.seqs[key.String()]), nil
}

// SetNextNumber implements Generator.
func (m *MockGenerator) SetNextNumber(_ context.Context, key Key, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seqs == nil {
		m.seqs = make(map[string]int64)
	}
	m.seqs[key.String()] = value
	return nil
}

var _ Generator = (*MockGenerator)(nil)
