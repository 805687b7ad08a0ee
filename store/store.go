//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package store

import (
	"bytes"
	"context"
)

// Client is the contract this core requires from the hierarchical
// store. Paths are slash-joined strings; values are opaque bytes.
// The core composes these primitives and never reaches around them.
type Client interface {
	// Read returns the value at path, or ok=false if absent.
	Read(ctx context.Context, path string) ([]byte, bool, error)

	// Transact applies fn to the current value at path (nil if absent)
	// and commits the result only if no concurrent writer touched the
	// path since it was read. Conflicts are retried internally a
	// bounded number of times, then ErrTransactionAborted surfaces.
	Transact(ctx context.Context, path string, fn func(old []byte) ([]byte, error)) ([]byte, error)

	// AtomicWrite applies every entry together or none of them.
	AtomicWrite(ctx context.Context, writes map[string][]byte) error

	// NewChildKey reserves a unique, order-preserving child key under
	// path without writing anything. The returned full path can be
	// committed later as part of an AtomicWrite.
	NewChildKey(path string) (fullPath string, key string)

	// Append writes value under a fresh child key and returns the key.
	Append(ctx context.Context, path string, value []byte) (string, error)

	// Subscribe delivers the current subtree under path on every
	// change until cancelled. limitToLast > 0 bounds each snapshot to
	// the most recent entries in key order.
	Subscribe(ctx context.Context, path string, limitToLast int) (*Subscription, error)
}

// Entry is one child of a subscribed subtree. Key is relative to the
// subscribed path.
type Entry struct {
	Key   string
	Value []byte
}

// Snapshot is the full state of a subtree, ascending by key.
type Snapshot []Entry

func (s Snapshot) equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for i, entry := range s {
		if entry.Key != other[i].Key || !bytes.Equal(entry.Value, other[i].Value) {
			return false
		}
	}
	return true
}

// Subscription is a live channel for one observed path. C is closed
// after Cancel, once the store-side listener is released.
type Subscription struct {
	C      <-chan Snapshot
	cancel context.CancelFunc
}

func (s *Subscription) Cancel() {
	s.cancel()
}
