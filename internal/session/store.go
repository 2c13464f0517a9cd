// Package session keeps live scribe sessions between transcript chunks.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harentsoaR/lipi-scribe-api/internal/models"
)

var ErrNotFound = errors.New("scribe session not found")

// Store persists sessions for a bounded time. Implementations store
// serialized copies, so callers may mutate what Get returns.
type Store interface {
	Get(ctx context.Context, id string) (*models.ScribeSession, error)
	Save(ctx context.Context, s *models.ScribeSession) error
	Delete(ctx context.Context, id string) error
}

func encode(s *models.ScribeSession) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return b, nil
}

func decode(b []byte) (*models.ScribeSession, error) {
	var s models.ScribeSession
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.History == nil {
		s.History = make(map[string][]models.HistoryEntry)
	}
	return &s, nil
}
