package storage

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values for the lifetime of the process only. It backs
// ephemeral sessions and tests.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates an empty in-process store whose entries never expire
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if x, found := s.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
