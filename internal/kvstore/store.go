// Package kvstore defines the byte-oriented key-value store the payout
// collections are persisted in, plus the key naming used across backends.
package kvstore

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrConflict is returned by Update when a watched key changed underneath it.
	ErrConflict = errors.New("kvstore: concurrent modification")
)

// Tx is the read/write surface shared by a Store and the view handed to Update.
type Tx interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Store interface {
	Tx
	// Update runs fn as one atomic read-modify-write over keys. Writes made
	// through the Tx become visible only if fn returns nil.
	Update(ctx context.Context, fn func(tx Tx) error, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
	Name() string
}

// Key joins a namespace and an entry name. An empty namespace yields the bare name.
func Key(namespace, name string) string {
	namespace = strings.TrimSuffix(namespace, ":")
	if namespace == "" {
		return name
	}
	return namespace + ":" + name
}
