package store

import (
	"sync"

	"github.com/AlexZinkM/guest-wallet/internal/model"
)

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*model.Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*model.Credential)}
}

func (s *MemoryStore) Get(key string) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return cred.Clone(), nil
}

func (s *MemoryStore) Set(key string, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = cred.Clone()
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}
