package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache miss")
)

// VisitorIdentity is the anonymous identity assigned to a browsing session.
// Immutable for the lifetime of the session cookie.
type VisitorIdentity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
}

// PresenceEntry records a visitor's last activity. Entries older than the
// registry TTL are excluded from the active set.
type PresenceEntry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Discussion is a community feed item, either from the static seed corpus or
// submitted at runtime.
type Discussion struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Summary         string    `json:"summary"`
	AuthorName      string    `json:"author_name"`
	AuthorRole      string    `json:"author_role"`
	AuthorAvatarURL string    `json:"author_avatar_url"`
	PostedAt        time.Time `json:"posted_at"`
	Likes           int       `json:"likes"`
	Replies         int       `json:"replies"`
	Views           int       `json:"views"`
	Topics          []string  `json:"topics"`
}

// HasTopic reports whether the discussion is tagged with the given topic key.
func (d Discussion) HasTopic(key string) bool {
	for _, t := range d.Topics {
		if t == key {
			return true
		}
	}
	return false
}

// Topic is derived from the discussion corpus on each read, never stored.
type Topic struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Highlights []string `json:"highlights"`
}

// Suggestion is a static "who to follow" sidebar entry.
type Suggestion struct {
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	AvatarURL string `json:"avatar_url"`
}

// TrendingQuestion is a static sidebar entry.
type TrendingQuestion struct {
	AuthorName      string `json:"author_name"`
	AuthorAvatarURL string `json:"author_avatar_url"`
	Title           string `json:"title"`
	Engagement      int    `json:"engagement"`
}

// Tab is a feed filter option presented to clients.
type Tab struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// CacheStore is the shared keyed store behind the presence registry and the
// discussion store. Get returns ErrCacheMiss for absent or expired keys.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
