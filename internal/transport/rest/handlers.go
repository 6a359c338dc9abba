package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/tailview/community-service/internal/discussions"
	"github.com/tailview/community-service/internal/domain"
	"github.com/tailview/community-service/internal/feed"
	"github.com/tailview/community-service/internal/metrics"
	"github.com/tailview/community-service/internal/middleware"
	appCtx "github.com/tailview/community-service/internal/pkg/context"
	"github.com/tailview/community-service/internal/transport/rest/response"
)

// DiscussionBroadcaster publishes a newly stored discussion to live
// subscribers.
type DiscussionBroadcaster interface {
	DiscussionAdded(ctx context.Context, d domain.Discussion)
}

type Handler struct {
	discussions *discussions.Store
	presence    PresenceLister
	broadcaster DiscussionBroadcaster
	validate    *validator.Validate
	now         func() time.Time
}

// PresenceLister is the read side of the presence registry.
type PresenceLister interface {
	Active(ctx context.Context) ([]domain.PresenceEntry, error)
}

func NewHandler(store *discussions.Store, presence PresenceLister, broadcaster DiscussionBroadcaster) *Handler {
	return &Handler{
		discussions: store,
		presence:    presence,
		broadcaster: broadcaster,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// Feed serves the combined discussion list through the query pipeline: the
// seed corpus followed by submitted discussions, with scope, sort, search
// and topic applied in that order.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	topic := q.Get("topic")
	if !feed.KnownTopic(topic) {
		topic = ""
	}

	search := q.Get("q")
	if search == "" {
		search = q.Get("search")
	}

	submitted, err := h.discussions.All(r.Context())
	if err != nil {
		fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
		return
	}
	// Seed corpus leads; submitted discussions follow. Slice order is the
	// tiebreak for equal sort keys and drives topic highlight selection, so
	// this ordering is observable.
	combined := append(feed.Seed(h.now()), submitted...)

	items := feed.Apply(combined, feed.Query{
		Filter:          feed.ParseFilter(q.Get("filter")),
		Scope:           feed.ParseScope(q.Get("scope")),
		Search:          search,
		Topic:           topic,
		FollowingTopics: feed.FollowingTopics(),
	})

	// Presence rides along for the initial page render; best-effort.
	active, err := h.presence.Active(r.Context())
	if err != nil {
		active = nil
	}

	response.Data(w, http.StatusOK, map[string]any{
		"discussions":      items,
		"presence":         active,
		"tabs":             feed.Tabs(),
		"topics":           feed.Topics(combined),
		"following_topics": feed.FollowingTopics(),
		"filter":           feed.ParseFilter(q.Get("filter")),
		"scope":            feed.ParseScope(q.Get("scope")),
		"search":           search,
		"topic":            topic,
	})
}

// SubmitDiscussion stores a visitor-submitted discussion and broadcasts it to
// feed subscribers exactly once.
func (h *Handler) SubmitDiscussion(w http.ResponseWriter, r *http.Request) {
	var sub feed.Submission
	if err := render.DecodeJSON(r.Body, &sub); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	if err := h.validate.Struct(sub); err != nil {
		meta := map[string]string{}
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			for _, fe := range verr {
				meta[fe.Field()] = "is required"
			}
		}
		fail(w, r, http.StatusUnprocessableEntity, "discussion.invalid", "title and summary are required", meta)
		return
	}

	authorName := feed.DefaultAuthorName
	if visitor, ok := middleware.VisitorFromContext(r.Context()); ok && visitor.DisplayName != "" {
		authorName = visitor.DisplayName
	}

	d := feed.Build(sub, authorName, h.now())

	if err := h.discussions.Add(r.Context(), d); err != nil {
		fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
		return
	}

	h.broadcaster.DiscussionAdded(r.Context(), d)
	metrics.RecordDiscussionSubmitted()

	response.Data(w, http.StatusCreated, d)
}

// Presence lists the currently active visitors, most recent first.
func (h *Handler) Presence(w http.ResponseWriter, r *http.Request) {
	active, err := h.presence.Active(r.Context())
	if err != nil {
		fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
		return
	}

	response.Data(w, http.StatusOK, map[string]any{
		"visitors": active,
		"count":    len(active),
	})
}

// Sidebar serves the static sidebar content.
func (h *Handler) Sidebar(w http.ResponseWriter, r *http.Request) {
	response.Data(w, http.StatusOK, map[string]any{
		"suggestions":        feed.Suggestions(),
		"trending_questions": feed.TrendingQuestions(),
	})
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	reqID := appCtx.GetRequestID(r.Context())
	if reqID == "" {
		reqID = "no-request-id"
	}
	response.Fail(w, status, code, message, meta, reqID)
}
