package handlers

import (
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"realestate-backend/internal/clients"
	"realestate-backend/internal/contacts"
	"realestate-backend/internal/middleware"
	"realestate-backend/internal/newsletters"
	"realestate-backend/internal/projects"
)

type Resources struct {
	Projects    *projects.Handler
	Clients     *clients.Handler
	Contacts    *contacts.Handler
	Newsletters *newsletters.Handler
}

type RouterOptions struct {
	FrontendOrigins []string
	// Limiter guards everything under /api; nil disables rate limiting.
	Limiter         *middleware.RateLimiter
	UploadDir       string
	UploadURLPrefix string
	RequestTimeout  time.Duration
	// TrustedProxies may set the client address through forwarding headers.
	// Empty means the connection peer is always the client.
	TrustedProxies []netip.Prefix
}

// NewRouter mounts the resource handlers under /api and /api/v1 along with
// health, static uploads and metrics.
func NewRouter(s *Server, res Resources, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	if len(opts.TrustedProxies) > 0 {
		r.Use(middleware.TrustedRealIP(opts.TrustedProxies))
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.Log))
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(opts.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(opts.RequestTimeout))

	r.NotFound(s.NotFound)
	r.MethodNotAllowed(s.MethodNotAllowed)

	registerAPIRoutes := func(api chi.Router) {
		if opts.Limiter != nil {
			api.Use(opts.Limiter.Middleware)
		}
		api.NotFound(s.NotFound)
		api.MethodNotAllowed(s.MethodNotAllowed)

		api.Get("/health", s.Health)
		api.Route("/projects", res.Projects.Routes)
		api.Route("/clients", res.Clients.Routes)
		api.Route("/contacts", res.Contacts.Routes)
		api.Route("/newsletters", res.Newsletters.Routes)

		// the public site posts its forms to the singular paths
		api.Post("/contact", res.Contacts.Create)
		api.Post("/newsletter", res.Newsletters.Subscribe)
	}

	r.Route("/api", registerAPIRoutes)
	r.Route("/api/v1", registerAPIRoutes)

	if opts.UploadDir != "" {
		prefix := "/" + strings.Trim(opts.UploadURLPrefix, "/")
		if prefix == "/" {
			prefix = "/uploads"
		}
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(opts.UploadDir)))
		r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
			// no directory listings
			if strings.HasSuffix(req.URL.Path, "/") {
				s.NotFound(w, req)
				return
			}
			files.ServeHTTP(w, req)
		})
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", s.Root)
	return r
}
