package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/harentsoaR/lipi-scribe-api/internal/models"
)

// MemoryStore keeps sessions in process. Entries expire after ttl of
// inactivity; every Save resets the clock.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(ttl, ttl/2)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.ScribeSession, error) {
	v, found := m.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	return decode(v.([]byte))
}

func (m *MemoryStore) Save(_ context.Context, s *models.ScribeSession) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	m.cache.SetDefault(s.ID, b)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	if _, found := m.cache.Get(id); !found {
		return ErrNotFound
	}
	m.cache.Delete(id)
	return nil
}

// Len reports the number of live sessions.
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}
