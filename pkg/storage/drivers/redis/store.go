// Package redis is a durable storage.Storage kept in one Redis hash, so a
// client fleet can share session state across machines.
package redis

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/quill/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// DefaultNamespace is the hash key used when none is configured.
const DefaultNamespace = "quill:session"

type Store struct {
	rdb       redis.UniversalClient
	namespace string
}

var _ storage.Storage = (*Store)(nil)

// NewStore wraps an existing client. Every key lives as a field of the hash
// named namespace.
func NewStore(rdb redis.UniversalClient, namespace string) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{rdb: rdb, namespace: namespace}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, namespace string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return NewStore(rdb, namespace), nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.HGet(ctx, s.namespace, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.rdb.HSet(ctx, s.namespace, key, value).Err()
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.rdb.HDel(ctx, s.namespace, key).Err()
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.rdb.HKeys(ctx, s.namespace).Result()
}
