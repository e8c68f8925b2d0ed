package expression

import (
	"context"
	"sync"
)

// Context is the mutable set of named variables visible to expressions
// evaluated for one process instance. Keys are validated before they
// reach Set; the Context itself performs no validation.
//
// A Context is safe for concurrent use. Evaluation reads a snapshot
// via Entries, so a concurrent writer never interleaves with a running
// evaluation.
type Context struct {
	mu   sync.RWMutex
	vars map[string]any
}

// NewContext creates an empty variable context.
func NewContext() *Context {
	return &Context{vars: make(map[string]any)}
}

// NewContextFrom creates a context seeded with the given variables.
// The map is copied; the caller keeps ownership of its argument.
func NewContextFrom(vars map[string]any) *Context {
	c := NewContext()
	for k, v := range vars {
		c.vars[k] = v
	}
	return c
}

// Set stores a value under key, overwriting any existing value.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vars[key] = value
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vars[key]
	return v, ok
}

// Remove deletes key and reports whether it was present.
func (c *Context) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.vars[key]
	delete(c.vars, key)
	return ok
}

// Entries returns a snapshot copy of all variables.
func (c *Context) Entries() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.vars))
	for k, v := range c.vars {
		out[k] = v
	}
	return out
}

// IsEmpty reports whether the context holds no variables.
func (c *Context) IsEmpty() bool {
	return c.Len() == 0
}

// Len returns the number of variables.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vars)
}

// Store caches variable contexts keyed by process instance ID.
// Implementations must be safe for concurrent use; per-instance
// consistency of mutation paths is the store's contract, the engine
// adds no synchronization of its own on those paths.
type Store interface {
	// Contains reports whether a context exists for the instance.
	Contains(ctx context.Context, id int64) (bool, error)

	// Get returns the cached context, or (nil, nil) when absent.
	Get(ctx context.Context, id int64) (*Context, error)

	// Put installs a context, overwriting any prior entry.
	Put(ctx context.Context, id int64, c *Context) error

	// Remove deletes the context and reports whether one existed.
	Remove(ctx context.Context, id int64) (bool, error)
}

// MemoryStore is the default in-process Store. It never returns an
// error.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[int64]*Context
}

// NewMemoryStore creates an empty in-memory context store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contexts: make(map[int64]*Context)}
}

// Contains implements Store.
func (s *MemoryStore) Contains(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.contexts[id]
	return ok, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id int64) (*Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contexts[id], nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, id int64, c *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[id] = c
	return nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.contexts[id]
	delete(s.contexts, id)
	return ok, nil
}
