package feed

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"
	"time"

	"github.com/tailview/community-service/internal/domain"
)

// DefaultAuthorName is used when the session carries no display name.
const DefaultAuthorName = "Community Member"

const defaultAvatarURL = "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?auto=format&fit=facearea&facepad=3&w=256&h=256&q=80"

var categoryByTopic = map[string]string{
	"component-architecture": "Architecture",
	"design-systems":         "Design Systems",
	"hotwire-patterns":       "Hotwire",
	"turbo-streams":          "Hotwire",
	"product-strategy":       "Product",
	"accessibility":          "Accessibility",
	"performance":            "Performance",
	"hiring-career":          "Team",
}

// Submission is the user-supplied part of a new discussion.
type Submission struct {
	Title           string   `json:"title" validate:"required"`
	Summary         string   `json:"summary" validate:"required"`
	AuthorRole      string   `json:"author_role"`
	AuthorAvatarURL string   `json:"author_avatar_url"`
	Topics          []string `json:"topics"`
}

// Build assembles a Discussion from a submission. Absent fields fall back to
// defaults rather than failing: role and author name default to
// "Community Member", the avatar to a stock image, topics to design-systems,
// and the view count to a random 200..800.
func Build(sub Submission, authorName string, now time.Time) domain.Discussion {
	topicKey := "design-systems"
	if len(sub.Topics) > 0 {
		topicKey = sub.Topics[0]
	}

	category, ok := categoryByTopic[topicKey]
	if !ok {
		category = "Community"
	}

	role := sub.AuthorRole
	if role == "" {
		role = DefaultAuthorName
	}

	avatar := sub.AuthorAvatarURL
	if avatar == "" {
		avatar = defaultAvatarURL
	}

	if authorName == "" {
		authorName = DefaultAuthorName
	}

	topics := sub.Topics
	if len(topics) == 0 {
		topics = []string{topicKey}
	}

	return domain.Discussion{
		ID:              generateID(now),
		Title:           sub.Title,
		Category:        category,
		Summary:         sub.Summary,
		AuthorName:      authorName,
		AuthorRole:      role,
		AuthorAvatarURL: avatar,
		PostedAt:        now,
		Likes:           0,
		Replies:         0,
		Views:           randomViews(),
		Topics:          topics,
	}
}

// generateID produces "live-<base36 unix seconds>-<4 hex>": unique enough in
// practice without any coordination.
func generateID(now time.Time) string {
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	return "live-" + strconv.FormatInt(now.Unix(), 36) + "-" + hex.EncodeToString(suffix)
}

func randomViews() int {
	n, err := rand.Int(rand.Reader, big.NewInt(601))
	if err != nil {
		return 200
	}
	return 200 + int(n.Int64())
}
