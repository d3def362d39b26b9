package kvstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string]string
	version int64

	// FailWrites makes Set and Delete return an error, for exercising the
	// storage-failure paths.
	FailWrites bool
	// FailReads makes Get and Keys return an error.
	FailReads bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string), version: 1}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return "", false, fmt.Errorf("get %q: store unavailable", key)
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("set %q: store unavailable", key)
	}
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("delete %q: store unavailable", key)
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Keys(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return nil, fmt.Errorf("keys %q: store unavailable", prefix)
	}
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// DataVersion reports the external-change counter. Writes through Set do
// not bump it, mirroring SQLite's data_version semantics where a
// connection's own writes are invisible to itself.
func (m *MemoryStore) DataVersion() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version, nil
}

// ExternalSet simulates a write from another process: the value changes and
// the data version bumps.
func (m *MemoryStore) ExternalSet(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.version++
}

// ExternalDelete simulates a delete from another process.
func (m *MemoryStore) ExternalDelete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.version++
}
