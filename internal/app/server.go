package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/klabast/wb-services/abfuhr-termine/internal/middleware"
	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

// Reloader schedules an out-of-band refresh
type Reloader interface {
	Trigger()
}

// Server is the HTTP surface over the schedule store
type Server struct {
	store    *schedule.Store
	reloader Reloader
	props    *Properties
	auth     *Auth
	logger   *slog.Logger
	router   chi.Router
}

// NewServer wires the routes. auth may be nil, which leaves reload unprotected.
func NewServer(store *schedule.Store, reloader Reloader, props *Properties, auth *Auth, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if auth == nil {
		auth = &Auth{logger: logger}
	}
	s := &Server{
		store:    store,
		reloader: reloader,
		props:    props,
		auth:     auth,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog(s.logger))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Thing description and properties
	r.Get("/", s.handleThing)
	r.Get("/properties", s.handleProperties)
	r.Get("/properties/{name}", s.handleProperty)

	r.Route("/api", func(r chi.Router) {
		r.Get("/schedule", s.handleSchedule)
		r.Get("/tools", s.handleTools)
		r.Post("/tools/{tool}", s.handleToolCall)
		r.Get("/download", s.handleDownload)
		r.Get("/subscribe", s.handleSubscribe)
		r.Post("/reload", s.auth.Require(s.handleReload))
	})

	return r
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
