package presence

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tailview/community-service/internal/domain"
)

const (
	cacheKey = "community:presence:v1"

	// DefaultTTL is the sliding window after which an untouched entry is
	// considered stale. Heartbeats must arrive faster than this.
	DefaultTTL = 45 * time.Second
)

// Update is a partial, typed update merged field-wise into an entry on Touch.
// Zero-value fields leave the existing value in place.
type Update struct {
	Name string
}

// Registry tracks anonymous visitor presence with a sliding TTL. Stale
// entries are purged lazily when the active set is read; there is no
// background sweeper. The whole uid->entry map lives under one cache key and
// the blob itself expires after the TTL, so an idle registry vanishes on its
// own.
type Registry struct {
	store domain.CacheStore
	ttl   time.Duration
	now   func() time.Time

	// Serializes load -> mutate -> persist so concurrent touches from two
	// connections cannot lose an update.
	mu sync.Mutex
}

type Option func(*Registry)

// WithTTL overrides the default 45s TTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.ttl = ttl }
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(store domain.CacheStore, opts ...Option) *Registry {
	r := &Registry{
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TTL returns the configured sliding window.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// Touch inserts or refreshes the entry for id, merging upd into it and
// stamping last_seen_at. A touch after the entry (or the whole blob) has
// lapsed simply re-creates it; that is the self-healing path for abandoned
// connections and restarted servers.
func (r *Registry) Touch(ctx context.Context, id string, upd Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return err
	}

	e, ok := entries[id]
	if !ok {
		e = domain.PresenceEntry{ID: id, Name: "Guest"}
	}
	if upd.Name != "" {
		e.Name = upd.Name
	}
	e.LastSeenAt = r.now()
	entries[id] = e

	return r.persist(ctx, entries)
}

// Remove deletes the entry for id. Missing ids are a no-op, not an error.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := entries[id]; !ok {
		return nil
	}
	delete(entries, id)

	return r.persist(ctx, entries)
}

// Active purges entries older than the TTL, then returns the rest sorted by
// last_seen_at descending.
func (r *Registry) Active(ctx context.Context) ([]domain.PresenceEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := r.now().Add(-r.ttl)
	changed := false
	for id, e := range entries {
		if e.LastSeenAt.Before(cutoff) {
			delete(entries, id)
			changed = true
		}
	}
	if changed {
		if err := r.persist(ctx, entries); err != nil {
			return nil, err
		}
	}

	active := make([]domain.PresenceEntry, 0, len(entries))
	for _, e := range entries {
		active = append(active, e)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].LastSeenAt.After(active[j].LastSeenAt)
	})

	return active, nil
}

func (r *Registry) load(ctx context.Context) (map[string]domain.PresenceEntry, error) {
	raw, err := r.store.Get(ctx, cacheKey)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return make(map[string]domain.PresenceEntry), nil
		}
		return nil, err
	}

	entries := make(map[string]domain.PresenceEntry)
	if err := json.Unmarshal(raw, &entries); err != nil {
		// A corrupt blob self-heals on the next write; start empty.
		return make(map[string]domain.PresenceEntry), nil
	}
	return entries, nil
}

func (r *Registry) persist(ctx context.Context, entries map[string]domain.PresenceEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, cacheKey, raw, r.ttl)
}
