package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/L1TangDingZhen/BOX-P/pkg/buildinfo"
	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/observability"
)

// newCORS builds the CORS middleware for the allowed origins.
func newCORS(origins []string, logger *log.Logger) func(http.Handler) http.Handler {
	methods := []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: methods,
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
	logger.Debug("cors configured", "origins", origins, "methods", methods)
	return c.Handler
}

// rateLimiter is a per-client token bucket.
type rateLimiter struct {
	limit      rate.Limit
	burst      int
	trustProxy bool
	logger     *log.Logger

	mu      sync.Mutex
	clients map[string]*rate.Limiter
}

func newRateLimiter(rps float64, burst int, trustProxy bool, logger *log.Logger) *rateLimiter {
	return &rateLimiter{
		limit:      rate.Limit(rps),
		burst:      burst,
		trustProxy: trustProxy,
		logger:     logger,
		clients:    make(map[string]*rate.Limiter),
	}
}

func (rl *rateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.clients[ip]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[ip] = l
	}
	return l
}

// prune drops clients whose bucket has refilled completely.
func (rl *rateLimiter) prune(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for ip, l := range rl.clients {
		if l.TokensAt(now) >= float64(rl.burst) {
			delete(rl.clients, ip)
			n++
		}
	}
	return n
}

func (rl *rateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, rl.trustProxy)
		if !rl.limiter(ip).Allow() {
			rl.logger.Warn("rate limit exceeded", "client", ip, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
				Error:   errors.ErrCodeInvalidInput,
				Message: "rate limit exceeded",
				Code:    http.StatusTooManyRequests,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the requesting client's address. Forwarding headers are
// only honored when trustProxy is set.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// instrument logs each request and reports it to the HTTP hooks. Routes
// are reported by pattern so session IDs don't explode cardinality.
func instrument(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set("Server", buildinfo.UserAgent())

			hooks := observability.HTTP()
			hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
			logger.Debug("request", "method", r.Method, "route", route, "status", status, "took", elapsed)
		})
	}
}
