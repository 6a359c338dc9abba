package feed

import (
	"sort"
	"strings"

	"github.com/tailview/community-service/internal/domain"
)

type Filter string

const (
	FilterRecent      Filter = "recent"
	FilterMostLiked   Filter = "most_liked"
	FilterMostAnswers Filter = "most_answers"
	FilterRelevance   Filter = "relevance"
)

type Scope string

const (
	ScopeAll       Scope = "all"
	ScopeFollowing Scope = "following"
)

// ParseFilter maps a raw query param to a Filter, falling back to recent on
// anything unknown. Invalid values never error.
func ParseFilter(raw string) Filter {
	switch Filter(raw) {
	case FilterMostLiked, FilterMostAnswers, FilterRelevance, FilterRecent:
		return Filter(raw)
	default:
		return FilterRecent
	}
}

// ParseScope maps a raw query param to a Scope, falling back to all.
func ParseScope(raw string) Scope {
	if Scope(raw) == ScopeFollowing {
		return ScopeFollowing
	}
	return ScopeAll
}

// Query describes one feed read.
type Query struct {
	Filter          Filter
	Scope           Scope
	Search          string
	Topic           string
	FollowingTopics []string
}

// Apply runs the query pipeline over the combined discussion list. Order
// matters: scope first, then sort, then search, then topic filter. The input
// slice is never mutated.
func Apply(discussions []domain.Discussion, q Query) []domain.Discussion {
	scoped := applyScope(discussions, q.Scope, q.FollowingTopics)

	search := strings.TrimSpace(q.Search)

	switch q.Filter {
	case FilterMostLiked:
		sortBy(scoped, func(a, b domain.Discussion) bool { return a.Likes > b.Likes })
	case FilterMostAnswers:
		sortBy(scoped, func(a, b domain.Discussion) bool { return a.Replies > b.Replies })
	case FilterRelevance:
		if search == "" {
			sortBy(scoped, func(a, b domain.Discussion) bool { return a.PostedAt.After(b.PostedAt) })
		} else {
			type scored struct {
				d     domain.Discussion
				score int
			}
			ranked := make([]scored, len(scoped))
			for i, d := range scoped {
				ranked[i] = scored{d: d, score: RelevanceScore(d, search)}
			}
			sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
			for i, r := range ranked {
				scoped[i] = r.d
			}
		}
	default:
		sortBy(scoped, func(a, b domain.Discussion) bool { return a.PostedAt.After(b.PostedAt) })
	}

	if search != "" {
		query := strings.ToLower(search)
		kept := scoped[:0]
		for _, d := range scoped {
			if matchesSearch(d, query) {
				kept = append(kept, d)
			}
		}
		scoped = kept
	}

	if q.Topic != "" {
		kept := scoped[:0]
		for _, d := range scoped {
			if d.HasTopic(q.Topic) {
				kept = append(kept, d)
			}
		}
		scoped = kept
	}

	return scoped
}

// RelevanceScore ranks d against a whitespace-tokenized query: per token and
// per text field, 3 points when the field starts with the token plus 2 more
// when it contains it anywhere, then likes/10 and replies as a popularity
// tiebreaker. Ties keep input order; no secondary tiebreak exists on purpose.
func RelevanceScore(d domain.Discussion, search string) int {
	search = strings.TrimSpace(search)
	if search == "" {
		return 0
	}

	tokens := strings.Fields(strings.ToLower(search))
	haystacks := []string{
		strings.ToLower(d.Title),
		strings.ToLower(d.Summary),
		strings.ToLower(d.Category),
		strings.ToLower(d.AuthorName),
	}

	score := 0
	for _, token := range tokens {
		for _, text := range haystacks {
			if strings.HasPrefix(text, token) {
				score += 3
			}
			if strings.Contains(text, token) {
				score += 2
			}
		}
	}

	return score + d.Likes/10 + d.Replies
}

func applyScope(discussions []domain.Discussion, scope Scope, following []string) []domain.Discussion {
	out := make([]domain.Discussion, 0, len(discussions))
	for _, d := range discussions {
		if scope == ScopeFollowing && !intersects(d.Topics, following) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesSearch(d domain.Discussion, query string) bool {
	for _, value := range []string{d.Title, d.Summary, d.Category, d.AuthorName} {
		if strings.Contains(strings.ToLower(value), query) {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func sortBy(items []domain.Discussion, less func(a, b domain.Discussion) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
