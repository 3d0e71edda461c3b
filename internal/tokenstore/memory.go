package tokenstore

import "sync"

// MemoryStore is an in-memory Store. It does not survive the process and is
// meant for tests and for running without a state directory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Set(token string) error { return m.put(TokenKey, token) }
func (m *MemoryStore) Get() (string, bool) { return m.get(TokenKey) }
func (m *MemoryStore) Clear() error { return m.del(TokenKey) }
func (m *MemoryStore) SetRole(role string) error { return m.put(RoleKey, role) }
func (m *MemoryStore) GetRole() (string, bool) { return m.get(RoleKey) }
func (m *MemoryStore) ClearRole() error { return m.del(RoleKey) }

func (m *MemoryStore) put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		delete(m.values, key)
		return nil
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) del(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
