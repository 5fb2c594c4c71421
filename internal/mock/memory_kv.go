package mock

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/MKhiriev/navdash/internal/store"
)

// MemoryKV is an in-memory store.KVRepository for tests that need real
// storage behaviour rather than call expectations.
//
// Setting FailPut or FailGet makes the matching operation return that error
// until it is reset.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string][]byte

	FailGet error
	FailPut error

	puts int
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailGet != nil {
		return nil, m.FailGet
	}
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut != nil {
		return m.FailPut
	}
	m.data[key] = append([]byte(nil), value...)
	m.puts++
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryKV) List(_ context.Context, prefix string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailGet != nil {
		return nil, m.FailGet
	}
	out := make(map[string][]byte)
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

// SetFailPut changes FailPut under the lock.
func (m *MemoryKV) SetFailPut(err error) {
	m.mu.Lock()
	m.FailPut = err
	m.mu.Unlock()
}

// SetFailGet changes FailGet under the lock.
func (m *MemoryKV) SetFailGet(err error) {
	m.mu.Lock()
	m.FailGet = err
	m.mu.Unlock()
}

// Raw returns the stored value for key without copying through Get's
// failure injection.
func (m *MemoryKV) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	return v, ok
}

// Seed stores value under key directly.
func (m *MemoryKV) Seed(key string, value []byte) {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), value...)
	m.mu.Unlock()
}

// Snapshot returns a copy of all entries.
func (m *MemoryKV) Snapshot() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.data)
}

// Puts returns how many successful Put calls were made.
func (m *MemoryKV) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
