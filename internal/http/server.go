package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// TransactionService is the part of the transaction store the API needs.
type TransactionService interface {
	Add(ctx context.Context, d core.TransactionDraft) (core.Transaction, error)
	UpdateIfExists(ctx context.Context, t core.Transaction) (bool, error)
	Delete(ctx context.Context, id string) error
	Get(id string) (core.Transaction, bool)
	Len() int
	Snapshot() ([]core.Transaction, uint64)
	FilterAndSort(f core.Filter) []core.Transaction
	Recent(n int) []core.Transaction
	MonthlyAggregates() []core.MonthlyBucket
}

// SummaryReader produces the dashboard summary.
type SummaryReader interface {
	Summary(ctx context.Context) core.Summary
}

type Server struct {
	http.Server
	store       TransactionService
	dashboard   SummaryReader
	logger      *applog.Logger
	rateLimiter *rateLimiter
}

// NewServer wires the JSON API routes. Every request passes through the
// logging, request ID, access log and security header middlewares.
func NewServer(addr string, store TransactionService, dashboard SummaryReader, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	s := &Server{
		store:       store,
		dashboard:   dashboard,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: newRateLimiter(writesPerWindow, writeWindow),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", s.handleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/recent", s.handleRecent).Methods(http.MethodGet)
	api.HandleFunc("/monthly", s.handleMonthly).Methods(http.MethodGet)
	api.HandleFunc("/totals", s.handleTotals).Methods(http.MethodGet)

	var h http.Handler = s.withSecurityHeaders(r)
	h = applog.AccessLogMiddleware(h)
	h = applog.RequestIDMiddleware(h)
	h = applog.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}

// withSecurityHeaders adds security headers and rate limits mutating requests.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		if isMutating(r.Method) && !s.rateLimiter.allow(remoteIP(r)) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, remoteIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			s.respond(w, r, TooManyRequests("60"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// respond writes b and logs encoding failures, which happen after the status
// line is already sent.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, b *JSONResponseBuilder) {
	if err := b.Write(w); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to write response",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the store has loaded, which NewTransactionStore
// guarantees before the server is built.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, NewJSONResponse().Body(map[string]any{
		"status":       "ready",
		"transactions": s.store.Len(),
	}))
}
