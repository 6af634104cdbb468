package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/L1TangDingZhen/BOX-P/pkg/cache"
	"github.com/L1TangDingZhen/BOX-P/pkg/observability"
	"github.com/L1TangDingZhen/BOX-P/pkg/session"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// AllowedOrigins lists CORS origins. Empty allows none; "*" allows all.
	AllowedOrigins []string

	// Rate is the sustained requests per second allowed per client and
	// Burst the bucket size. Rate 0 disables limiting.
	Rate  float64
	Burst int

	// TrustProxy honors X-Forwarded-For and X-Real-IP for rate limiting.
	TrustProxy bool

	// SessionTTL removes sessions idle for longer than this. Zero keeps
	// them until deleted.
	SessionTTL time.Duration

	// Session holds the defaults for new sessions. Its Logger is replaced
	// by the server's logger.
	Session session.Options

	// Seed returns the palette seed for each new session. Nil uses
	// Session.Seed.
	Seed func() uint64

	// Stats, when set, is served at /api/stats.
	Stats *observability.Counters

	// Cache stores rendered SVG support graphs. Nil disables caching.
	Cache cache.Cache

	Logger *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	opts    Options
	store   *session.Store
	limiter *rateLimiter
	logger  *log.Logger
	handler http.Handler
	cache   cache.Cache
}

// New creates a server with an empty session store.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		opts:   opts,
		store:  session.NewStore(),
		logger: logger,
		cache:  opts.Cache,
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if opts.Rate > 0 {
		s.limiter = newRateLimiter(opts.Rate, opts.Burst, opts.TrustProxy, logger)
	}
	s.handler = s.routes()
	return s
}

// Store returns the server's session store.
func (s *Server) Store() *session.Store { return s.store }

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(instrument(s.logger))
	r.Use(newCORS(s.opts.AllowedOrigins, s.logger))
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, s.logger, notFound("no route for %s %s", r.Method, r.URL.Path))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		if s.opts.Stats != nil {
			r.Get("/stats", s.stats)
		}

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.listSessions)
			r.Post("/", s.createSession)
			r.Post("/import", s.importSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.deleteSession)
				r.Post("/boxes", s.placeBox)
				r.Delete("/boxes/{boxID}", s.removeBox)
				r.Put("/container", s.resizeContainer)
				r.Get("/layers", s.layers)
			})
		})
	})
	return r
}

// Run listens on Options.Addr until ctx is cancelled, then shuts down
// gracefully. Idle sessions and rate limiter state are swept periodically.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx, sweepInterval)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sweepOnce(now)
		}
	}
}

func (s *Server) sweepOnce(now time.Time) {
	if s.opts.SessionTTL > 0 {
		if n := s.store.Cleanup(s.opts.SessionTTL); n > 0 {
			s.logger.Info("expired idle sessions", "count", n, "remaining", s.store.Len())
		}
	}
	if s.limiter != nil {
		s.limiter.prune(now)
	}
}

func (s *Server) newSessionOptions() session.Options {
	opts := s.opts.Session
	opts.Logger = s.logger
	if s.opts.Seed != nil {
		opts.Seed = s.opts.Seed()
	}
	return opts
}
