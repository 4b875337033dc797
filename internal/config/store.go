package config

import (
	"sync"
	"sync/atomic"
)

// Option configures a Store.
type Option func(*Store)

// WithStrictKeys makes Apply reject keys that are not part of the schema
// instead of ignoring them.
func WithStrictKeys() Option {
	return func(s *Store) {
		s.strict = true
	}
}

// Store owns the detector properties and publishes them as immutable
// snapshots.
//
// Readers never block. Writers are serialized so two concurrent Apply calls
// cannot lose each other's keys.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	strict  bool
}

// NewStore creates a store holding the factory defaults.
func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(DefaultSnapshot())
	return s
}

// Snapshot returns the current immutable snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Namespaces lists the configuration sub-trees this store occupies.
func (s *Store) Namespaces() []string {
	return Namespaces()
}

// Export returns {namespace: current values}. The returned maps are copies.
func (s *Store) Export() map[string]Properties {
	return map[string]Properties{
		Namespace: s.Snapshot().Properties(),
	}
}

// Apply merges update[Namespace] into the current values and publishes the
// result as a new snapshot.
//
// Keys are processed in lexical order. Processing stops at the first key
// whose value has the wrong type (or, in strict mode, at the first unknown
// key). Keys processed before that point are still published; there is no
// rollback. Other namespaces in update are ignored.
func (s *Store) Apply(update map[string]Properties) error {
	values, ok := update[Namespace]
	if !ok || len(values) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().values.Clone()
	var err error
	for _, key := range values.Keys() {
		stored, known := next[key]
		if !known {
			if s.strict {
				err = &UnknownKeyError{Key: key}
				break
			}
			continue
		}

		value, kind := normalize(values[key])
		expected := KindOf(stored)
		if kind != expected {
			err = &TypeMismatchError{Key: key, Expected: expected, Received: values[key]}
			break
		}
		next[key] = value
	}

	s.current.Store(&Snapshot{values: next})
	return err
}
