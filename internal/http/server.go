// Package http exposes the budget service as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ordenate/internal/auth"
	"ordenate/internal/cache"
	"ordenate/internal/services"
)

type Server struct {
	http.Server
	budget      *services.BudgetService
	auth        *auth.Service
	rateLimiter *rateLimiter

	// sessions maps bearer tokens to user ids.
	sessions *cache.LRUCache[int64]

	shutdownOnce sync.Once
}

const sessionTTL = 24 * time.Hour

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, budget *services.BudgetService, authSvc *auth.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		budget:      budget,
		auth:        authSvc,
		rateLimiter: newRateLimiter(),
		sessions:    cache.NewLRUCache[int64](1000, sessionTTL),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("POST /api/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("POST /api/login", s.withSecurityHeaders(s.handleLogin))

	mux.HandleFunc("GET /api/dataset", s.authenticated(s.handleDataset))
	mux.HandleFunc("POST /api/expenses", s.authenticated(s.handleCreateExpense))
	mux.HandleFunc("DELETE /api/expenses", s.authenticated(s.handleDeleteExpenses))
	mux.HandleFunc("POST /api/incomes", s.authenticated(s.handleCreateIncome))
	mux.HandleFunc("POST /api/payments", s.authenticated(s.handleRegisterPayments))
	mux.HandleFunc("PUT /api/years/{year}/amounts", s.authenticated(s.handleReplaceYearAmounts))
	mux.HandleFunc("GET /api/years/{year}/table", s.authenticated(s.handleYearTable))
	mux.HandleFunc("GET /api/summary", s.authenticated(s.handleMonthlySummary))
	mux.HandleFunc("GET /api/summary/annual", s.authenticated(s.handleAnnualSummary))
	mux.HandleFunc("GET /api/pending", s.authenticated(s.handlePendingItems))
	mux.HandleFunc("GET /api/projection", s.authenticated(s.handleProjection))
	mux.HandleFunc("PUT /api/balance", s.authenticated(s.handleSetBalance))
	mux.HandleFunc("PUT /api/comment", s.authenticated(s.handleSetComment))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// authenticated wraps a handler with the security middleware plus
// bearer token resolution.
func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return s.withSecurityHeaders(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.userFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing or expired session")
			return
		}
		next(w, r, userID)
	})
}

func (s *Server) userFromRequest(r *http.Request) (int64, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return 0, false
	}
	return s.sessions.Get(token)
}

// newSession stores a fresh token for the user and returns it.
func (s *Server) newSession(userID int64) string {
	token := generateToken()
	s.sessions.Set(token, userID)
	return token
}

type contextKey string

const requestIDKey contextKey = "request_id"

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// generateToken creates an opaque session token.
func generateToken() string {
	bytes := make([]byte, 24)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("tok_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
