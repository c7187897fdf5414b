package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hamrosewa/internal/booking"
	"hamrosewa/internal/catalog"
	"hamrosewa/internal/config"
	"hamrosewa/internal/domain"
	"hamrosewa/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const visitorCookieMaxAge = 365 * 24 * time.Hour

// ReadyCheck reports whether a dependency the server needs is usable.
type ReadyCheck func(ctx context.Context) error

// Deps are the collaborators the web API serves.
type Deps struct {
	Catalog     *service.CatalogService
	Auth        *service.AuthService
	Preferences *service.PreferenceService
	Source      domain.CatalogSource
	Booking     domain.BookingBackend
	Events      domain.EventPublisher
	Metrics     http.Handler
	ReadyChecks map[string]ReadyCheck
	Debounce    time.Duration
	WindowDays  int
	ViewTTL     time.Duration
	Clock       func() time.Time
}

// HTTPServer is the JSON front of the marketplace.
type HTTPServer struct {
	cfg    config.ServerConfig
	deps   Deps
	logger *zerolog.Logger
	server *http.Server

	catalogViews *ViewRegistry[*catalog.Browser]
	bookingViews *ViewRegistry[*booking.Coordinator]
}

func NewHTTPServer(cfg config.ServerConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	srv := &HTTPServer{
		cfg:          cfg,
		deps:         deps,
		logger:       logger,
		catalogViews: NewViewRegistry(deps.ViewTTL, (*catalog.Browser).Close),
		bookingViews: NewViewRegistry(deps.ViewTTL, (*booking.Coordinator).Close),
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return srv
}

func (s *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics)
	}

	limiter := newClientLimiter(s.cfg.RateLimit)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(visitorMiddleware(s.cfg.SecureCookies, visitorCookieMaxAge))
		r.Use(limiter.Wrap)

		r.Get("/home", s.handleHome)
		r.Get("/services", s.handleServices)
		r.Get("/services/{slug}", s.handleService)
		r.Get("/categories", s.handleCategories)
		r.Get("/categories/{slug}", s.handleCategory)

		r.Route("/views/catalog", func(r chi.Router) {
			r.Post("/", s.handleCreateCatalogView)
			r.Get("/{id}", s.handleGetCatalogView)
			r.Patch("/{id}", s.handleUpdateCatalogView)
			r.Delete("/{id}", s.handleDeleteCatalogView)
		})

		r.Route("/views/booking", func(r chi.Router) {
			r.Post("/", s.handleCreateBookingView)
			r.Get("/{id}", s.handleGetBookingView)
			r.Delete("/{id}", s.handleDeleteBookingView)
			r.Post("/{id}/date", s.handleSelectDate)
			r.Post("/{id}/time", s.handleSelectTime)
			r.Post("/{id}/form", s.handleOpenForm)
			r.Delete("/{id}/form", s.handleCloseForm)
			r.Post("/{id}/book", s.handleBook)
		})

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/me", s.handleMe)

		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)
	})

	return r
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// SweepViews evicts idle views every interval until ctx is done.
func (s *HTTPServer) SweepViews(ctx context.Context, interval time.Duration) {
	go s.catalogViews.Run(ctx, interval)
	s.bookingViews.Run(ctx, interval)
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.catalogViews.Close()
	s.bookingViews.Close()
	return err
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady runs every ready check. The marketplace backend is not one of
// them; pages report it as unavailable instead.
func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range s.deps.ReadyChecks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failures": failures})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
