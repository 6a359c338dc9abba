package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/tailview/community-service/internal/metrics"
	"github.com/tailview/community-service/internal/middleware"
	"github.com/tailview/community-service/internal/transport/rest/response"
)

type RouterDeps struct {
	Handler *Handler

	// WS upgrades /api/community/ws to the live feed socket. Optional; the
	// route is omitted when nil.
	WS http.Handler

	CookieSecret  string
	CookieTTL     time.Duration
	SecureCookies bool

	// Submission rate limit, per client IP.
	SubmitLimit  int
	SubmitWindow time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}
	if d.SubmitLimit <= 0 {
		d.SubmitLimit = 10
	}
	if d.SubmitWindow <= 0 {
		d.SubmitWindow = time.Minute
	}

	r := chi.NewRouter()

	// Request ID + structured access log
	r.Use(RequestID)
	r.Use(HTTPLogger)

	// Panic recovery
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	// Cross-cutting
	r.Use(SecurityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/community", func(r chi.Router) {
		r.Use(middleware.Visitor(d.CookieSecret, d.CookieTTL, d.SecureCookies))

		r.Get("/feed", d.Handler.Feed)
		r.Get("/presence", d.Handler.Presence)
		r.Get("/sidebar", d.Handler.Sidebar)

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(d.SubmitLimit, d.SubmitWindow))
			r.Post("/discussions", d.Handler.SubmitDiscussion)
		})

		if d.WS != nil {
			r.Method(http.MethodGet, "/ws", d.WS)
		}
	})

	return r
}
