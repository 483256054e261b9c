// Package api provides the HTTP API server and handlers for StayBook.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/staybook/staybook-server/internal/logger"
	"github.com/staybook/staybook-server/internal/ratelimit"
	"github.com/staybook/staybook-server/internal/store"
)

// Options tunes request handling.
type Options struct {
	// CORSOrigins lists allowed origins. Empty or "*" allows any origin
	// without credentials.
	CORSOrigins    []string
	MaxUploadBytes int64
	MaxUploadFiles int
	// AuthRateLimit is requests per minute per client IP on /login and
	// /register. Zero disables limiting.
	AuthRateLimit int
	AuthRateBurst int
	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	storage  *StorageServices
	opts     Options
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger

	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, storage *StorageServices, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Discard().Logger
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.MaxUploadFiles <= 0 {
		opts.MaxUploadFiles = DefaultMaxUploadFiles
	}

	s := &Server{
		store:    st,
		services: services,
		storage:  storage,
		opts:     opts,
		router:   chi.NewRouter(),
		logger:   log,
	}
	if opts.AuthRateLimit > 0 {
		burst := opts.AuthRateBurst
		if burst <= 0 {
			burst = opts.AuthRateLimit
		}
		s.authRateLimiter = ratelimit.PerMinute(opts.AuthRateLimit, burst)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("StayBook API", "1.0.0")
	humaConfig.Info.Description = "Accommodation listings and bookings"
	// No $schema links in bodies; clients expect the documents as stored.
	humaConfig.CreateHooks = nil
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(s.logger)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for OpenAPI export and tests.
func (s *Server) API() huma.API {
	return s.api
}

// Shutdown stops background workers owned by the server.
func (s *Server) Shutdown() error {
	if s.authRateLimiter != nil {
		s.authRateLimiter.Stop()
	}
	return nil
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	if s.opts.TrustProxyHeaders {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(logger.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(corsOptions(s.opts.CORSOrigins)))
	s.router.Use(authMiddleware(s.services.Auth))
}

// corsOptions allows credentials only for an explicit origin list.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		opts.AllowedOrigins = []string{"*"}
		return opts
	}
	opts.AllowedOrigins = origins
	opts.AllowCredentials = true
	return opts
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerPlaceRoutes()
	s.registerSearchRoutes()
	s.registerBookingRoutes()
	s.registerUploadRoutes()
}
