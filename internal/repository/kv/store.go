// Package kv хранит коллекции целиком в виде JSON значений под одним ключом,
// как это делает локальное key-value хранилище: один ключ на категорию,
// отдельные ключи для архива документов и журнала SMS.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/frontandrew/plakatakip/internal/pkg/redis"
)

// ErrKeyNotFound - ключ отсутствует в хранилище
var ErrKeyNotFound = errors.New("kv: key not found")

// Store - минимальный интерфейс key-value хранилища
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryStore - хранилище в памяти процесса
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore создает пустое хранилище в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	s.data[key] = v
	s.mu.Unlock()
	return nil
}

// RedisStore - хранилище в Redis с общим префиксом ключей
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore создает хранилище поверх Redis клиента
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.prefix+key)
	if err != nil {
		if redis.IsNil(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
