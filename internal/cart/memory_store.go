package cart

import (
	"context"
	"sync"

	"github.com/iarleylcs/cartify-flow/internal/domain"
)

// MemoryStore implements Store with in-memory storage, one cart per
// session id. The single active cart lives here for the lifetime of the
// browse session.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string]domain.Cart),
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cart, exists := s.carts[sessionID]; exists {
		return cart, nil
	}
	return domain.NewCart(), nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[sessionID] = cart
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}
