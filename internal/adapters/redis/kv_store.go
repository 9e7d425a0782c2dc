package redis

// Package redis provides Redis-based adapters for the session backend.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tenugui-collection/tenugui-api/internal/ports"
)

var _ ports.KeyValueStore = (*KVStore)(nil)

// KVStore is a Redis-backed key-value store with per-key TTLs.
// It works against single, sentinel and cluster clients alike.
type KVStore struct {
	client redis.UniversalClient
	prefix string
}

// NewKVStore creates a new Redis-backed key-value store.
func NewKVStore(client redis.UniversalClient) *KVStore {
	return &KVStore{client: client}
}

// NewKVStoreWithPrefix creates a Redis key-value store with a custom key prefix.
func NewKVStoreWithPrefix(client redis.UniversalClient, prefix string) *KVStore {
	return &KVStore{
		client: client,
		prefix: prefix,
	}
}

// Get returns the stored value or ports.ErrKeyNotFound.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ports.ErrKeyNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Set writes value under key with the given expiry hint.
// A non-positive ttl is rejected so records can never outlive their session.
func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil // Nothing to delete
	}

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
