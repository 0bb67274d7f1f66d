package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hail-faro/public-backend/internal/auth/cookie"
	"github.com/hail-faro/public-backend/internal/auth/service"
	"github.com/hail-faro/public-backend/internal/metrics"
	"github.com/hail-faro/public-backend/pkg/httpx"
	"github.com/hail-faro/public-backend/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics

	Cookies          cookie.Factory
	LoginService     *service.LoginService
	AuthorizeService *service.AuthorizeService
}

func NewRouter(buildVersion string, m *metrics.Metrics, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		metrics:      m,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern with request metrics labelled by pattern.
func (r *Router) handle(pattern string, h http.Handler) {
	r.Mux.Handle(pattern, r.metrics.Instrument(pattern, h))
}

func (r *Router) registerSession() {
	// POST /login - strict rate limit by IP + email to slow password guessing
	loginHandler := &LoginHandler{LoginService: r.LoginService, Cookies: r.Cookies}
	r.handle("POST /login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email"),
		),
	)

	// GET /auth - called on every upstream request, lenient limit
	authorizeHandler := &AuthorizeHandler{AuthorizeService: r.AuthorizeService, Cookies: r.Cookies}
	r.handle("GET /auth",
		httpx.Chain(authorizeHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	var ready ReadinessChecker
	if r.AuthorizeService != nil {
		ready = r.AuthorizeService
	}
	r.handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, ready),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
