package storex

import (
	"context"
	"sync"
)

// TypedMemory is an in-memory Repository implementation. Entities are kept in
// creation order; all operations are safe for concurrent use.
type TypedMemory[T any] struct {
	mutex sync.RWMutex
	idOf  IDFunc[T]
	items map[string]T
	order []string
}

// NewTypedMemory creates an empty in-memory repository. idOf extracts the ID
// from an entity.
func NewTypedMemory[T any](idOf IDFunc[T]) *TypedMemory[T] {
	return &TypedMemory[T]{
		idOf:  idOf,
		items: make(map[string]T),
	}
}

// Create adds a new entity to the store
func (m *TypedMemory[T]) Create(ctx context.Context, item T) (T, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	id := m.idOf(item)
	if _, exists := m.items[id]; exists {
		var zero T
		return zero, storeErrors.New(ErrDuplicateID).WithDetail("id", id)
	}

	m.items[id] = item
	m.order = append(m.order, id)
	return item, nil
}

// FindByID retrieves an entity by its ID
func (m *TypedMemory[T]) FindByID(ctx context.Context, id string) (T, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	item, ok := m.items[id]
	if !ok {
		var zero T
		return zero, storeErrors.New(ErrRecordNotFound).WithDetail("id", id)
	}
	return item, nil
}

// FindOne retrieves the first entity matching the predicate, in creation order
func (m *TypedMemory[T]) FindOne(ctx context.Context, match func(T) bool) (T, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, id := range m.order {
		if match(m.items[id]) {
			return m.items[id], nil
		}
	}
	var zero T
	return zero, storeErrors.New(ErrRecordNotFound)
}

// Update replaces an existing entity
func (m *TypedMemory[T]) Update(ctx context.Context, id string, item T) (T, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.items[id]; !ok {
		var zero T
		return zero, storeErrors.New(ErrRecordNotFound).WithDetail("id", id)
	}
	m.items[id] = item
	return item, nil
}

// Delete removes an entity from the store
func (m *TypedMemory[T]) Delete(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.items[id]; !ok {
		return storeErrors.New(ErrRecordNotFound).WithDetail("id", id)
	}
	delete(m.items, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// List retrieves every entity in creation order
func (m *TypedMemory[T]) List(ctx context.Context) ([]T, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	items := make([]T, 0, len(m.order))
	for _, id := range m.order {
		items = append(items, m.items[id])
	}
	return items, nil
}
