// Package storage holds the string-keyed, string-valued stores a client keeps
// its session in. Durable drivers live under drivers/; Memory backs the
// session-scoped store and tests.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Storage is a flat key/value store with no TTLs. Drivers must make Set
// visible to the next Get on any handle to the same backing store.
type Storage interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string) error

	// Remove is a no-op for missing keys.
	Remove(ctx context.Context, key string) error

	// Keys lists every key currently stored, in no particular order.
	Keys(ctx context.Context) ([]string, error)
}

// GetOrDefault returns the stored value, or def when the key is absent.
// Any other error is returned as is.
func GetOrDefault(ctx context.Context, s Storage, key, def string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return v, nil
}

// Pinger is implemented by drivers backed by a connection that can go away.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks s is reachable. Stores without a connection always are.
func Ping(ctx context.Context, s Storage) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
