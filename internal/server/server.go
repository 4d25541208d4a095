package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/humane/internal/billing"
	"github.com/jonathan/humane/internal/config"
	"github.com/jonathan/humane/internal/db"
	"github.com/jonathan/humane/internal/metrics"
	"github.com/jonathan/humane/internal/quota"
	"github.com/jonathan/humane/internal/rewriting"
	"github.com/jonathan/humane/internal/scoring"
	"github.com/jonathan/humane/internal/server/middleware"
	"github.com/jonathan/humane/internal/server/ratelimit"
)

const (
	serviceLLM     = "AI model"
	serviceStore   = "History"
	serviceBilling = "Billing"
	serviceQuota   = "Usage tracking"
)

// Rewriter produces LLM rewrites. Implemented by *rewriting.Rewriter.
type Rewriter interface {
	RewritePost(ctx context.Context, req rewriting.Request) (string, error)
	RewriteAllTones(ctx context.Context, post string, intensity, maxLength int) ([]rewriting.ToneRewrite, error)
	AnalyzeAndRewrite(ctx context.Context, post string) (*rewriting.DeepAnalysis, error)
}

// HistoryStore persists rewrites. Implemented by *db.DB.
type HistoryStore interface {
	SaveRewrite(ctx context.Context, r *db.Rewrite) error
	ListRewritesPage(ctx context.Context, userID uuid.UUID, page, limit int) (*db.RewritePage, error)
	GetRewrite(ctx context.Context, userID, id uuid.UUID) (*db.Rewrite, error)
	DeleteRewrite(ctx context.Context, userID, id uuid.UUID) (bool, error)
}

// WebhookProcessor applies billing events. Implemented by *billing.WebhookHandler.
type WebhookProcessor interface {
	Handle(ctx context.Context, payload []byte, signature string) (billing.Outcome, error)
}

// Deps are the collaborators a Server is built from. Only Config and Scorer
// are required; routes whose collaborator is nil answer 503.
type Deps struct {
	Config    *config.AppConfig
	Scorer    *scoring.Scorer
	Rewriter  Rewriter
	History   HistoryStore
	Quota     *quota.Checker
	Webhooks  WebhookProcessor
	Tokens    middleware.TokenValidator
	Metrics   *metrics.Metrics
	RateLimit *ratelimit.Config
}

// Server is the HTTP API server
type Server struct {
	cfg        *config.AppConfig
	scorer     *scoring.Scorer
	rewriter   Rewriter
	history    HistoryStore
	quota      *quota.Checker
	webhooks   WebhookProcessor
	metrics    *metrics.Metrics
	validate   *validator.Validate
	handler    http.Handler
	httpServer *http.Server

	rateLimiter *ratelimit.Limiter
}

// New creates a new server and registers its routes
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if deps.Scorer == nil {
		deps.Scorer = scoring.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	s := &Server{
		cfg:         deps.Config,
		scorer:      deps.Scorer,
		rewriter:    deps.Rewriter,
		history:     deps.History,
		quota:       deps.Quota,
		webhooks:    deps.Webhooks,
		metrics:     deps.Metrics,
		validate:    newValidator(),
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
	}

	// Routes that need a user always require a token. Scoring and rewriting
	// accept anonymous callers in development.
	requireUser := middleware.AuthMiddleware(deps.Tokens, middleware.Options{})
	devOptional := middleware.AuthMiddleware(deps.Tokens, middleware.Options{
		AllowAnonymous: s.cfg.IsDevelopment(),
	})

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.Handle("POST /api/analyze", devOptional(http.HandlerFunc(s.handleAnalyze)))
	mux.Handle("POST /api/analyze/deep", devOptional(http.HandlerFunc(s.handleDeepAnalyze)))
	mux.Handle("POST /api/rewrite", devOptional(http.HandlerFunc(s.handleRewrite)))
	mux.Handle("POST /api/rewrite/all", devOptional(http.HandlerFunc(s.handleRewriteAll)))
	mux.Handle("POST /api/export", devOptional(http.HandlerFunc(s.handleExport)))

	mux.Handle("GET /api/history", requireUser(http.HandlerFunc(s.handleListHistory)))
	mux.Handle("DELETE /api/history", requireUser(http.HandlerFunc(s.handleDeleteHistory)))
	mux.Handle("GET /api/history/{id}/export", requireUser(http.HandlerFunc(s.handleExportHistory)))
	mux.Handle("GET /api/usage", requireUser(http.HandlerFunc(s.handleUsage)))

	// Authenticated by signature, not by token
	mux.HandleFunc("POST /api/webhooks/stripe", s.handleStripeWebhook)

	s.handler = s.withObservability(s.withRateLimit(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	log.Println("Server stopped")
	return nil
}

// Close releases background resources without serving
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withObservability logs each request and records it in metrics under its route pattern
func (s *Server) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		s.metrics.ObserveRequest(r.Method, routeLabel(r), rec.status, elapsed)
		log.Printf("[%s] %s completed %d in %v", r.Method, r.URL.Path, rec.status, elapsed)
	})
}

// routeLabel returns the matched mux pattern without its method, so path
// parameters do not explode metric cardinality.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and public message. Server-side failures are logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	s.errorResponse(w, status, publicMessage(err))
}

// extractClientID uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := max(int(info.RetryAfter.Seconds()), 1)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d", info.Limit, info.Remaining)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
