package storex

import "context"

// Repository provides a generic data access interface for entity operations.
// IDs are strings so callers can use uuids or natural keys interchangeably.
type Repository[T any] interface {
	// Create adds a new entity to the store
	Create(ctx context.Context, item T) (T, error)

	// FindByID retrieves an entity by its ID
	FindByID(ctx context.Context, id string) (T, error)

	// FindOne retrieves the first entity matching the predicate
	FindOne(ctx context.Context, match func(T) bool) (T, error)

	// Update replaces an existing entity
	Update(ctx context.Context, id string, item T) (T, error)

	// Delete removes an entity from the store
	Delete(ctx context.Context, id string) error

	// List retrieves every entity in creation order
	List(ctx context.Context) ([]T, error)
}

// IDFunc extracts the ID from an entity
type IDFunc[T any] func(T) string
