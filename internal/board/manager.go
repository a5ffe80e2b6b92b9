package board

import (
	"sync"

	"github.com/google/uuid"
)

// Manager keeps one Store per browser session, keyed by an opaque id that
// the HTTP layer stows in the session cookie. Stores are never shared
// across sessions.
type Manager struct {
	mu      sync.RWMutex
	stores  map[string]*Store
	factory func() *Store
}

// NewManager creates a Manager that builds stores with the given factory.
func NewManager(factory func() *Store) *Manager {
	return &Manager{
		stores:  map[string]*Store{},
		factory: factory,
	}
}

// Create allocates a new Store and returns its id.
func (m *Manager) Create() (string, *Store) {
	id := uuid.NewString()
	store := m.factory()

	m.mu.Lock()
	m.stores[id] = store
	m.mu.Unlock()

	return id, store
}

// Get returns the Store for the id, if one exists.
func (m *Manager) Get(id string) (*Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	store, ok := m.stores[id]
	return store, ok
}

// Drop discards the Store for the id.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	delete(m.stores, id)
	m.mu.Unlock()
}

// Len reports the number of live stores.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stores)
}
