// Package http exposes the finance tracker as a JSON REST API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type contextKey string

const userContextKey contextKey = "current_user"

// Server wires handlers, middleware and the rate limiter on top of the
// stdlib http.Server.
type Server struct {
	http.Server

	repo        *storage.Repository
	expenses    *services.ExpenseService
	tokens      *auth.TokenManager
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures all routes and returns a ready-to-run server.
func NewServer(addr string, repo *storage.Repository, expenses *services.ExpenseService, tokens *auth.TokenManager) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		repo:        repo,
		expenses:    expenses,
		tokens:      tokens,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /{$}", s.withMiddleware(handleWelcome))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /auth/register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("POST /auth/login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("POST /auth/forgot-password", s.withMiddleware(s.handleForgotPassword))
	mux.HandleFunc("POST /auth/reset-password", s.withMiddleware(s.handleResetPassword))
	mux.HandleFunc("PUT /auth/password", s.withMiddleware(s.withAuth(s.handleChangePassword)))

	mux.HandleFunc("GET /users/me", s.withMiddleware(s.withAuth(s.handleCurrentUser)))

	mux.HandleFunc("GET /categories", s.withMiddleware(s.withAuth(s.handleListCategories)))
	mux.HandleFunc("POST /categories", s.withMiddleware(s.withAuth(s.handleCreateCategory)))
	mux.HandleFunc("PUT /categories/{id}", s.withMiddleware(s.withAuth(s.handleUpdateCategory)))
	mux.HandleFunc("DELETE /categories/{id}", s.withMiddleware(s.withAuth(s.handleDeleteCategory)))

	mux.HandleFunc("GET /budgets", s.withMiddleware(s.withAuth(s.handleListBudgets)))
	mux.HandleFunc("POST /budgets", s.withMiddleware(s.withAuth(s.handleCreateBudget)))
	mux.HandleFunc("GET /budgets/month/{month}", s.withMiddleware(s.withAuth(s.handleBudgetsForMonth)))
	mux.HandleFunc("PUT /budgets/{id}", s.withMiddleware(s.withAuth(s.handleUpdateBudget)))
	mux.HandleFunc("DELETE /budgets/{id}", s.withMiddleware(s.withAuth(s.handleDeleteBudget)))

	mux.HandleFunc("GET /expenses", s.withMiddleware(s.withAuth(s.handleListExpenses)))
	mux.HandleFunc("POST /expenses", s.withMiddleware(s.withAuth(s.handleCreateExpense)))
	mux.HandleFunc("PUT /expenses/{id}", s.withMiddleware(s.withAuth(s.handleUpdateExpense)))
	mux.HandleFunc("DELETE /expenses/{id}", s.withMiddleware(s.withAuth(s.handleDeleteExpense)))

	mux.HandleFunc("GET /reports/summary/{month}", s.withMiddleware(s.withAuth(s.handleSummary)))
	mux.HandleFunc("GET /reports/summary/{month}/csv", s.withMiddleware(s.withAuth(s.handleSummaryCSV)))
	mux.HandleFunc("GET /reports/summary/{month}/xlsx", s.withMiddleware(s.withAuth(s.handleSummaryXLSX)))
	mux.HandleFunc("GET /reports/summary-by-category/{month}", s.withMiddleware(s.withAuth(s.handleBreakdown)))
	mux.HandleFunc("GET /reports/summary-by-category/{month}/csv", s.withMiddleware(s.withAuth(s.handleBreakdownCSV)))
	mux.HandleFunc("GET /reports/summary-by-category/{month}/xlsx", s.withMiddleware(s.withAuth(s.handleBreakdownXLSX)))

	return s
}

// Shutdown stops the rate limiter cleanup goroutine and drains the
// HTTP server.
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

// withMiddleware adds request IDs, logging, security headers and rate
// limiting on mutating requests.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientAddr(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), contextKey("request_id"), requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// withAuth authenticates the Bearer token and loads the current user
// into the request context. Fails closed with 401.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		email, err := s.tokens.VerifyAccessToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := s.repo.GetUserByEmail(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// currentUser returns the authenticated user placed by withAuth.
func currentUser(r *http.Request) core.User {
	u, _ := r.Context().Value(userContextKey).(core.User)
	return u
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Personal Finance Tracker API"})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// A probe read tells whether the database answers at all.
	if _, err := s.repo.GetUserByID(r.Context(), 0); err != nil && !errors.Is(err, core.ErrNotFound) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
