// Package http is the JSON API surface: session-guarded REST endpoints over
// the service layer.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"budgeteer/internal/core"
	applog "budgeteer/internal/log"
	"budgeteer/internal/services"
)

type contextKey string

const accountContextKey contextKey = "account"

// Server bundles the HTTP listener with the services it fronts.
type Server struct {
	http.Server

	auth       *services.AuthService
	categories *services.CategoryService
	rules      *services.RuleService
	txns       *services.TransactionService
	budgets    *services.BudgetService
	goals      *services.GoalService
	reports    *services.ReportService
	notifier   *services.Notifier

	logger       *applog.Logger
	structured   *applog.StructuredLogger
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Deps collects the collaborators NewServer wires into routes.
type Deps struct {
	Auth       *services.AuthService
	Categories *services.CategoryService
	Rules      *services.RuleService
	Txns       *services.TransactionService
	Budgets    *services.BudgetService
	Goals      *services.GoalService
	Reports    *services.ReportService
	Notifier   *services.Notifier
	Logger     *applog.Logger
}

func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	s := &Server{
		Server:      http.Server{Addr: addr, Handler: mux},
		auth:        deps.Auth,
		categories:  deps.Categories,
		rules:       deps.Rules,
		txns:        deps.Txns,
		budgets:     deps.Budgets,
		goals:       deps.Goals,
		reports:     deps.Reports,
		notifier:    deps.Notifier,
		logger:      logger,
		structured:  applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/register", s.public(s.handleRegister))
	mux.HandleFunc("POST /api/login", s.public(s.handleLogin))

	mux.HandleFunc("POST /api/logout", s.authed(s.handleLogout))
	mux.HandleFunc("POST /api/password", s.authed(s.handleChangePassword))

	mux.HandleFunc("GET /api/categories", s.authed(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.authed(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.authed(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.authed(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/rules", s.authed(s.handleListRules))
	mux.HandleFunc("POST /api/rules", s.authed(s.handleCreateRule))
	mux.HandleFunc("DELETE /api/rules/{id}", s.authed(s.handleDeleteRule))

	mux.HandleFunc("GET /api/transactions", s.authed(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.authed(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.authed(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.authed(s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/transactions/import", s.authed(s.handleImportCSV))
	mux.HandleFunc("POST /api/transactions/categorize", s.authed(s.handleCategorize))

	mux.HandleFunc("GET /api/budgets", s.authed(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.authed(s.handleCreateBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.authed(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.authed(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/goals", s.authed(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.authed(s.handleCreateGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.authed(s.handleUpdateGoal))
	mux.HandleFunc("PUT /api/goals/{id}/rank", s.authed(s.handleRankGoal))
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.authed(s.handleContribute))
	mux.HandleFunc("DELETE /api/goals/{id}", s.authed(s.handleDeleteGoal))

	mux.HandleFunc("GET /api/reports", s.authed(s.handleReport))
	mux.HandleFunc("POST /api/reports/export", s.authed(s.handleExportReport))

	mux.HandleFunc("GET /api/notifications", s.authed(s.handleListNotifications))

	return s
}

// Shutdown stops the listener and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// public wraps unauthenticated endpoints with logging, headers and rate
// limiting. Login and register are the brute-force surface, so POSTs here are
// rate limited per client.
func (s *Server) public(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientAddr(r)
		r = withRequestID(r)
		s.structured.LogHTTPStart(r.Context(), r, clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			w.Header().Set("Retry-After", "60")
			fail(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			s.structured.LogHTTPEnd(r.Context(), r, http.StatusTooManyRequests, time.Since(start).Milliseconds(), clientIP)
			return
		}

		setSecurityHeaders(w)
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)
		s.structured.LogHTTPEnd(r.Context(), r, rw.status, time.Since(start).Milliseconds(), clientIP)
	}
}

// authed resolves the bearer token to an account before the handler runs.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return s.public(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			fail(w, http.StatusUnauthorized, "missing session token")
			return
		}
		account, err := s.auth.Authorize(r.Context(), token)
		if err != nil {
			failErr(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next(w, r.WithContext(ctx))
	})
}

func accountFrom(r *http.Request) core.Account {
	account, _ := r.Context().Value(accountContextKey).(core.Account)
	return account
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
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

func withRequestID(r *http.Request) *http.Request {
	id := generateRequestID()
	ctx := context.WithValue(r.Context(), contextKey(applog.FieldRequestID), id)
	return r.WithContext(ctx)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Cache-Control", "no-store")
}

// statusWriter captures the status code for the completion log line.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// rateLimiter is a fixed-window per-client limiter for the login surface.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

const (
	rateLimitPerMinute = 30
	rateLimitStaleAge  = 10 * time.Minute
)

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= rateLimitPerMinute
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rateLimitStaleAge)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}
