package storex

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/Abraxas-365/wahax/logx"
)

// TypedFile is a Repository backed by a single JSON file. The full collection
// lives in memory and is flushed to disk after every mutation, via a temp file
// rename so a crash never leaves a half-written store behind.
type TypedFile[T any] struct {
	mutex  sync.Mutex
	path   string
	memory *TypedMemory[T]
}

// NewTypedFile creates a file-backed repository at path, loading any existing
// records. A missing file is an empty store, not an error.
func NewTypedFile[T any](path string, idOf IDFunc[T]) (*TypedFile[T], error) {
	store := &TypedFile[T]{
		path:   path,
		memory: NewTypedMemory(idOf),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, storeErrors.New(ErrLoadFailed).WithDetail("path", path).WithCause(err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, storeErrors.New(ErrLoadFailed).WithDetail("path", path).WithCause(err)
	}
	for _, item := range items {
		if _, err := store.memory.Create(context.Background(), item); err != nil {
			return nil, storeErrors.New(ErrLoadFailed).WithDetail("path", path).WithCause(err)
		}
	}

	logx.Debug("Loaded %d records from %s", len(items), path)
	return store, nil
}

// Create adds a new entity and flushes the store
func (f *TypedFile[T]) Create(ctx context.Context, item T) (T, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	created, err := f.memory.Create(ctx, item)
	if err != nil {
		return created, err
	}
	if err := f.persist(ctx); err != nil {
		f.memory.Delete(ctx, f.memory.idOf(item))
		var zero T
		return zero, err
	}
	return created, nil
}

// FindByID retrieves an entity by its ID
func (f *TypedFile[T]) FindByID(ctx context.Context, id string) (T, error) {
	return f.memory.FindByID(ctx, id)
}

// FindOne retrieves the first entity matching the predicate
func (f *TypedFile[T]) FindOne(ctx context.Context, match func(T) bool) (T, error) {
	return f.memory.FindOne(ctx, match)
}

// Update replaces an existing entity and flushes the store
func (f *TypedFile[T]) Update(ctx context.Context, id string, item T) (T, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	previous, err := f.memory.FindByID(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	updated, err := f.memory.Update(ctx, id, item)
	if err != nil {
		return updated, err
	}
	if err := f.persist(ctx); err != nil {
		f.memory.Update(ctx, id, previous)
		var zero T
		return zero, err
	}
	return updated, nil
}

// Delete removes an entity and flushes the store
func (f *TypedFile[T]) Delete(ctx context.Context, id string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	previous, err := f.memory.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := f.memory.Delete(ctx, id); err != nil {
		return err
	}
	if err := f.persist(ctx); err != nil {
		f.memory.Create(ctx, previous)
		return err
	}
	return nil
}

// List retrieves every entity in creation order
func (f *TypedFile[T]) List(ctx context.Context) ([]T, error) {
	return f.memory.List(ctx)
}

func (f *TypedFile[T]) persist(ctx context.Context) error {
	items, err := f.memory.List(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return storeErrors.New(ErrPersistFailed).WithDetail("path", f.path).WithCause(err)
	}

	temp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*.json")
	if err != nil {
		return storeErrors.New(ErrPersistFailed).WithDetail("path", f.path).WithCause(err)
	}
	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return storeErrors.New(ErrPersistFailed).WithDetail("path", f.path).WithCause(err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return storeErrors.New(ErrPersistFailed).WithDetail("path", f.path).WithCause(err)
	}
	if err := os.Rename(temp.Name(), f.path); err != nil {
		os.Remove(temp.Name())
		return storeErrors.New(ErrPersistFailed).WithDetail("path", f.path).WithCause(err)
	}
	return nil
}
