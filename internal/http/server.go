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

	"talaan/internal/cache"
	"talaan/internal/core"
	"talaan/internal/log"
	"talaan/internal/services"
)

type Server struct {
	http.Server
	ledger      *services.LedgerService
	reports     *services.ReportService
	rateLimiter *rateLimiter

	// LRU cache for month buckets keyed by year; recomputing the grouping
	// on every page load is the hot path.
	bucketCache *cache.LRUCache[[]core.MonthBucket]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, ledger *services.LedgerService, reports *services.ReportService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:           ledger,
		reports:          reports,
		rateLimiter:      newRateLimiter(),
		bucketCache:      cache.NewLRUCache[[]core.MonthBucket](50, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/reports", s.withMiddleware(s.handleCreateReport))
	mux.HandleFunc("GET /api/reports", s.withMiddleware(s.handleListReports))
	mux.HandleFunc("GET /api/reports/buckets", s.withMiddleware(s.handleBucketReports))

	mux.HandleFunc("POST /api/incidents", s.withMiddleware(s.handleCreateIncident))
	mux.HandleFunc("GET /api/incidents", s.withMiddleware(s.handleListIncidents))
	mux.HandleFunc("PATCH /api/incidents/{id}/status", s.withMiddleware(s.handleIncidentStatus))

	mux.HandleFunc("POST /api/ledger/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("GET /api/ledger/expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("GET /api/ledger/expenses/{id}", s.withMiddleware(s.handleGetExpense))
	mux.HandleFunc("PUT /api/ledger/expenses/{id}", s.withMiddleware(s.handleUpdateExpense))
	mux.HandleFunc("POST /api/ledger/expenses/{id}/archive", s.withMiddleware(s.handleArchiveExpense))
	mux.HandleFunc("POST /api/ledger/expenses/{id}/restore", s.withMiddleware(s.handleRestoreExpense))
	mux.HandleFunc("DELETE /api/ledger/expenses/{id}", s.withMiddleware(s.handleDeleteExpense))

	mux.HandleFunc("POST /api/ledger/incomes", s.withMiddleware(s.handleAddIncome))
	mux.HandleFunc("GET /api/ledger/incomes", s.withMiddleware(s.handleListIncomes))

	mux.HandleFunc("POST /api/budget/items", s.withMiddleware(s.handleCreateLineItem))
	mux.HandleFunc("GET /api/budget/items", s.withMiddleware(s.handleListLineItems))
	mux.HandleFunc("GET /api/budget/years/{year}", s.withMiddleware(s.handleGetYearlyBudget))
	mux.HandleFunc("PUT /api/budget/years/{year}", s.withMiddleware(s.handleSetTotalBudget))

	mux.HandleFunc("POST /api/staff", s.withMiddleware(s.handleCreateStaff))
	mux.HandleFunc("GET /api/staff", s.withMiddleware(s.handleListStaff))
	mux.HandleFunc("PUT /api/staff/{id}", s.withMiddleware(s.handleUpdateStaff))
	mux.HandleFunc("DELETE /api/staff/{id}", s.withMiddleware(s.handleDeleteStaff))

	return s
}

// startCacheCleanup periodically drops expired bucket cache entries.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.bucketCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		// Mutations are rate limited per client.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldComponent, log.ComponentRateLimit)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

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

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
