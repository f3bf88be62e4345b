package drafts

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps encoded drafts in process. Used when Redis is not configured.
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (models.Draft, error) {
	v, found := s.cache.Get(draftKey(sessionID))
	if !found {
		return models.Draft{}, models.ErrNoDraft
	}
	return Decode(v.([]byte))
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, draft models.Draft) error {
	data, err := Encode(draft)
	if err != nil {
		return err
	}
	s.cache.Set(draftKey(sessionID), data, s.ttl)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.cache.Delete(draftKey(sessionID))
	return nil
}
