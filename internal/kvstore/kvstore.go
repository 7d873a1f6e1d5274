// Package kvstore provides the key-value store the benchmark drives
// inside the critical section: inserts, finds, and updates modeled on an
// embedded database workload.
//
// Stores are NOT safe for concurrent use. The benchmark serializes all
// access with the lock under test, which is the point of the exercise.
package kvstore

import (
	"errors"
	"fmt"
	"math/rand"
)

// Store is a minimal ordered-map abstraction over the workload engines
type Store interface {
	// Insert adds a new key. Inserting an existing key returns
	// ErrDuplicateKey.
	Insert(key string, value []byte) error
	// Find returns the value for a key, or ErrKeyNotFound
	Find(key string) ([]byte, error)
	// Update replaces the value of an existing key, or returns
	// ErrKeyNotFound
	Update(key string, value []byte) error
	// Len returns the number of stored keys
	Len() (int, error)
	// Close releases the engine's resources
	Close() error
}

var (
	// ErrDuplicateKey is returned by Insert when the key already exists
	ErrDuplicateKey = errors.New("kvstore: duplicate key")
	// ErrKeyNotFound is returned by Find and Update when the key does not exist
	ErrKeyNotFound = errors.New("kvstore: key not found")
)

// Open creates a store for the named engine. The path is only meaningful
// for sqlite; empty runs it in-memory.
func Open(engine, path string) (Store, error) {
	switch engine {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store engine %q (valid: memory, sqlite)", engine)
	}
}

// Key formats a workload key from a worker id and a key id
func Key(worker, id int) string {
	return fmt.Sprintf("T%02d_K%08d", worker, id)
}

// Value generates size bytes of printable data in the A..Z range
func Value(r *rand.Rand, size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte('A' + r.Intn(26))
	}
	return buf
}
