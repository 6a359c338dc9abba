package feed

import (
	"time"

	"github.com/tailview/community-service/internal/domain"
)

// Tabs lists the feed filter options in display order.
func Tabs() []domain.Tab {
	return []domain.Tab{
		{Key: "recent", Label: "Latest Activity"},
		{Key: "most_liked", Label: "Most Appreciated"},
		{Key: "most_answers", Label: "Most Discussed"},
		{Key: "relevance", Label: "Relevant"},
	}
}

// FollowingTopics is the fixed topic set backing the "following" scope.
func FollowingTopics() []string {
	return []string{"design-systems", "product-strategy", "turbo-streams", "hotwire-patterns"}
}

var baseTopics = []domain.Topic{
	{Key: "component-architecture", Name: "Component Architecture"},
	{Key: "design-systems", Name: "Design Systems"},
	{Key: "hotwire-patterns", Name: "Hotwire Patterns"},
	{Key: "turbo-streams", Name: "Turbo Streams"},
	{Key: "product-strategy", Name: "Product Strategy"},
	{Key: "accessibility", Name: "Accessibility"},
	{Key: "performance", Name: "Performance"},
	{Key: "hiring-career", Name: "Hiring & Career"},
}

// KnownTopic reports whether key is one of the curated topic keys. Feed
// queries with unknown topics fall back to no topic filter.
func KnownTopic(key string) bool {
	for _, t := range baseTopics {
		if t.Key == key {
			return true
		}
	}
	return false
}

// Topics derives the topic list with up to 3 highlight titles each from the
// given discussion corpus. Recomputed per read, never stored.
func Topics(discussions []domain.Discussion) []domain.Topic {
	highlights := make(map[string][]string)
	for _, d := range discussions {
		for _, key := range d.Topics {
			if len(highlights[key]) < 3 {
				highlights[key] = append(highlights[key], d.Title)
			}
		}
	}

	out := make([]domain.Topic, len(baseTopics))
	for i, t := range baseTopics {
		t.Highlights = highlights[t.Key]
		out[i] = t
	}
	return out
}

// Suggestions is the static "builders to follow" sidebar list.
func Suggestions() []domain.Suggestion {
	return []domain.Suggestion{
		{
			Name:      "Priya Desai",
			Handle:    "@priya_builds",
			AvatarURL: "https://images.unsplash.com/photo-1544723795-3fb6469f5b39?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
		},
		{
			Name:      "Nathan Cole",
			Handle:    "@shipfastnate",
			AvatarURL: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
		},
		{
			Name:      "Zara Beltran",
			Handle:    "@zarabel",
			AvatarURL: "https://images.unsplash.com/photo-1520785643438-5bf77931f493?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
		},
	}
}

// TrendingQuestions is the static trending sidebar list.
func TrendingQuestions() []domain.TrendingQuestion {
	return []domain.TrendingQuestion{
		{
			AuthorName:      "Nathan Cole",
			AuthorAvatarURL: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
			Title:           "What KPIs matter most before opening our private beta?",
			Engagement:      312,
		},
		{
			AuthorName:      "Zara Beltran",
			AuthorAvatarURL: "https://images.unsplash.com/photo-1520785643438-5bf77931f493?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
			Title:           "How do you price component consulting engagements?",
			Engagement:      205,
		},
		{
			AuthorName:      "Priya Desai",
			AuthorAvatarURL: "https://images.unsplash.com/photo-1544723795-3fb6469f5b39?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
			Title:           "Show-and-tell: The most useful Stimulus controller you wrote lately?",
			Engagement:      178,
		},
	}
}

// Seed returns the static discussion corpus with posted_at anchored to now.
func Seed(now time.Time) []domain.Discussion {
	return []domain.Discussion{
		{
			ID:              "component-versioning",
			Title:           "How do we version components without breaking downstream apps?",
			Category:        "Architecture",
			Summary:         "We have close to 70 reusable TailView components. Curious how others roll out breaking changes while keeping product teams shipping?",
			AuthorName:      "Jordan Blake",
			AuthorRole:      "Design Systems Lead",
			AuthorAvatarURL: "https://images.unsplash.com/photo-1506794778202-cad84cf45f1d?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
			PostedAt:        now.Add(-1 * time.Hour),
			Likes:           58,
			Replies:         21,
			Views:           2150,
			Topics:          []string{"component-architecture", "design-systems", "performance"},
		},
		{
			ID:              "turbo-onboarding",
			Title:           "Turbo onboarding flows that feel native — what patterns worked for you?",
			Category:        "Hotwire",
			Summary:         "We're rethinking our onboarding wizard to feel app-like with Turbo Frames and Streams. Looking for patterns that avoid modal fatigue.",
			AuthorName:      "Anika Soto",
			AuthorRole:      "Product Engineer",
			AuthorAvatarURL: "https://images.unsplash.com/photo-1500917293891-ef795e70e1f6?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
			PostedAt:        now.Add(-3 * time.Hour),
			Likes:           144,
			Replies:         52,
			Views:           5740,
			Topics:          []string{"hotwire-patterns", "turbo-streams", "product-strategy"},
		},
		{
			ID:              "stimulus-analytics",
			Title:           "Share your Stimulus patterns for product analytics opt-ins",
			Category:        "Growth",
			Summary:         "Looking for ethical ways to nudge analytics opt-ins using Stimulus controllers without relying on third-party widgets.",
			AuthorName:      "Miguel Chen",
			AuthorRole:      "Growth PM",
			AuthorAvatarURL: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
			PostedAt:        now.Add(-6 * time.Hour),
			Likes:           318,
			Replies:         36,
			Views:           18210,
			Topics:          []string{"accessibility", "hotwire-patterns", "product-strategy"},
		},
		{
			ID:              "async-design-crits",
			Title:           "Async design crits with Turbo Streams — worth the effort?",
			Category:        "Collaboration",
			Summary:         "We prototyped critique sessions using Turbo Streams to collect feedback in real-time. Results are mixed — would love alternative ideas.",
			AuthorName:      "Leah Martin",
			AuthorRole:      "Principal Designer",
			AuthorAvatarURL: "https://images.unsplash.com/photo-1500917293891-ef795e70e1f6?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
			PostedAt:        now.Add(-9 * time.Hour),
			Likes:           92,
			Replies:         88,
			Views:           6110,
			Topics:          []string{"design-systems", "turbo-streams"},
		},
		{
			ID:              "developer-advocate-role",
			Title:           "Hiring our first developer advocate — what should the first 90 days look like?",
			Category:        "Team",
			Summary:         "We're expanding TailView beyond internal teams. Looking for a 90-day plan template for a dev advocate joining a product-led team.",
			AuthorName:      "Rahul Patel",
			AuthorRole:      "Head of Platform",
			AuthorAvatarURL: "https://images.unsplash.com/photo-1502685104226-ee32379fefbe?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
			PostedAt:        now.Add(-14 * time.Hour),
			Likes:           109,
			Replies:         147,
			Views:           9310,
			Topics:          []string{"hiring-career", "product-strategy"},
		},
		{
			ID:              "release-notes-cadence",
			Title:           "What cadence keeps release notes useful?",
			Category:        "Operations",
			Summary:         "We send weekly product digests internally but engagement has slipped. Curious how you balance cadence, detail, and effort.",
			AuthorName:      "Sasha Green",
			AuthorRole:      "Product Operations",
			AuthorAvatarURL: "https://images.unsplash.com/photo-1544723795-3fb6469f5b39?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
			PostedAt:        now.Add(-18 * time.Hour),
			Likes:           187,
			Replies:         29,
			Views:           4280,
			Topics:          []string{"component-architecture", "product-strategy"},
		},
		{
			ID:              "playbook-retro",
			Title:           "Retro: Launching TailView 3.0 after 4 months in public preview",
			Category:        "Product",
			Summary:         "We wrapped our preview program with 420 feedback notes. Sharing takeaways and curious how others handle large-scale preview programs.",
			AuthorName:      "Mia Thompson",
			AuthorRole:      "Product Lead",
			AuthorAvatarURL: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80",
			PostedAt:        now.Add(-48 * time.Hour),
			Likes:           271,
			Replies:         64,
			Views:           26890,
			Topics:          []string{"design-systems", "product-strategy", "component-architecture"},
		},
	}
}
