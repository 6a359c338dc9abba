package discussions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/tailview/community-service/internal/domain"
)

const (
	cacheKey = "community:discussions:v1"

	// MaxItems caps the store; the oldest entries fall off on overflow.
	MaxItems = 25

	// DefaultTTL is the store-wide expiry window, re-anchored on every write.
	// If nothing is submitted for this long the whole dynamic feed resets.
	DefaultTTL = 12 * time.Hour
)

// Store is a bounded, newest-first cache of submitted discussions. The TTL
// applies to the collection as a whole, not per item: each Add resets the
// window, and an idle store silently expires in one piece.
type Store struct {
	store domain.CacheStore
	ttl   time.Duration

	mu sync.Mutex
}

type Option func(*Store)

// WithTTL overrides the store-wide expiry window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

func NewStore(store domain.CacheStore, opts ...Option) *Store {
	s := &Store{
		store: store,
		ttl:   DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// All returns the current discussions, newest first. An expired or unset
// store yields an empty slice.
func (s *Store) All(ctx context.Context) ([]domain.Discussion, error) {
	raw, err := s.store.Get(ctx, cacheKey)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}

	var items []domain.Discussion
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil
	}
	return items, nil
}

// Add prepends d, truncates to MaxItems and resets the expiry window.
func (s *Store) Add(ctx context.Context, d domain.Discussion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.All(ctx)
	if err != nil {
		return err
	}

	updated := append([]domain.Discussion{d}, current...)
	if len(updated) > MaxItems {
		updated = updated[:MaxItems]
	}

	raw, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, cacheKey, raw, s.ttl)
}

// Clear empties the store immediately.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, cacheKey)
}
