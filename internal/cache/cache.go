package cache

import (
	"context"
	"sync"
	"time"
)

// Collections cached from the upstream API.
const (
	Products   = "products"
	Orders     = "orders"
	Users      = "users"
	Categories = "categories"
)

// Key addresses a cache entry: a whole collection or a single entity
// within it.
type Key struct {
	Collection string
	ID         string
}

// CollectionKey addresses a cached collection.
func CollectionKey(collection string) Key {
	return Key{Collection: collection}
}

// EntityKey addresses a cached single entity.
func EntityKey(collection, id string) Key {
	return Key{Collection: collection, ID: id}
}

func (k Key) String() string {
	if k.ID == "" {
		return k.Collection
	}
	return k.Collection + "/" + k.ID
}

type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
}

// Store is the keyed in-process cache. It is the only shared mutable
// state in the service; readers and writers go through this interface
// and never mutate cached values in place. A write always replaces the
// whole value.
type Store struct {
	mu       sync.RWMutex
	entries  map[Key]entry
	inflight map[Key]map[uint64]context.CancelFunc
	tokens   uint64
	now      func() time.Time
}

// New builds an empty store.
func New() *Store {
	return &Store{
		entries:  make(map[Key]entry),
		inflight: make(map[Key]map[uint64]context.CancelFunc),
		now:      time.Now,
	}
}

// WithNow overrides the store clock for testing.
func (s *Store) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Get returns the cached value regardless of staleness.
func (s *Store) Get(key Key) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Fresh returns the cached value only when it has not been invalidated
// and is younger than staleTime.
func (s *Store) Fresh(key Key, staleTime time.Duration) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	if staleTime > 0 && s.now().Sub(e.fetchedAt) >= staleTime {
		return nil, false
	}
	return e.value, true
}

// Set writes a fresh value.
func (s *Store) Set(key Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, fetchedAt: s.now()}
}

// Delete drops an entry.
func (s *Store) Delete(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Invalidate marks entries stale without dropping their values, so the
// stale value keeps rendering until the reconciling refetch lands.
func (s *Store) Invalidate(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if e, ok := s.entries[key]; ok {
			e.stale = true
			s.entries[key] = e
		}
	}
}

// Value is a typed read of a cache entry.
func Value[T any](s *Store, key Key) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// FreshValue is a typed staleness-aware read.
func FreshValue[T any](s *Store, key Key, staleTime time.Duration) (T, bool) {
	var zero T
	v, ok := s.Fresh(key, staleTime)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
