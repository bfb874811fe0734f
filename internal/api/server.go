// Package api exposes the HTTP interface of the link monitor.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zaplinks/linkmonitor/internal/metrics"
	"github.com/zaplinks/linkmonitor/internal/scrape"
	"github.com/zaplinks/linkmonitor/internal/storage/postgres"
)

// pageStore is the page persistence surface the handlers need.
type pageStore interface {
	ListPages(ctx context.Context, owner int64) ([]scrape.Page, error)
	Add(ctx context.Context, page scrape.Page, owner int64) (bool, error)
	Delete(ctx context.Context, pageURL string, owner int64) (bool, error)
}

// linkStore lists stored links.
type linkStore interface {
	List(ctx context.Context, limit int, owner *int64) ([]scrape.Link, error)
}

// runStore reads last-run markers.
type runStore interface {
	Read(ctx context.Context, owner int64) (scrape.RunRecord, bool, error)
}

// userStore is the account surface the auth handlers need.
type userStore interface {
	Create(ctx context.Context, email, hashedPassword, name string) (postgres.User, error)
	GetByEmail(ctx context.Context, email string) (postgres.User, error)
	GetByID(ctx context.Context, id int64) (postgres.User, error)
}

// runner triggers a pipeline run for one owner.
type runner interface {
	Run(ctx context.Context, owner int64) (scrape.RunResult, error)
}

// tokens signs and verifies bearer tokens.
type tokens interface {
	IssueToken(userID int64, email string) (string, error)
	VerifyToken(token string) (int64, error)
}

// Server wires HTTP handlers to the stores and the pipeline runner.
type Server struct {
	router chi.Router
	pages  pageStore
	links  linkStore
	runs   runStore
	users  userStore
	runner runner
	tokens tokens
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	pages pageStore,
	links linkStore,
	runs runStore,
	users userStore,
	runner runner,
	tokens tokens,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pages:  pages,
		links:  links,
		runs:   runs,
		users:  users,
		runner: runner,
		tokens: tokens,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/auth/me", s.me)
			r.Get("/pages", s.listPages)
			r.Post("/pages", s.addPage)
			r.Delete("/pages", s.deletePage)
			r.Get("/links", s.listLinks)
			r.Post("/scraper/run", s.runScraper)
			r.Get("/scraper/last-run", s.lastRun)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type ownerKey struct{}

// ownerFromContext returns the authenticated user ID placed by authMiddleware.
func ownerFromContext(ctx context.Context) (int64, bool) {
	owner, ok := ctx.Value(ownerKey{}).(int64)
	return owner, ok
}

func contextWithOwner(ctx context.Context, owner int64) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
