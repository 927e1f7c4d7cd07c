// Package http exposes the JSON API: dashboard aggregations, transaction
// writes, budgets, the savings goal and bills.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finboard/internal/cache"
	"finboard/internal/goal"
	"finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/services"
	"finboard/internal/storage"
)

// Config carries the tunables the server needs from the environment.
type Config struct {
	Addr              string
	SnapshotCacheTTL  time.Duration
	SnapshotCacheSize int
	// RateLimitPerMinute caps requests per client IP. Zero uses the default.
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	transactions *services.TransactionService
	dashboard    *services.DashboardService
	store        *storage.SQLiteRepository
	goals        goal.Repository
	logger       *log.Logger

	// dashCache memoizes marshaled dashboard responses keyed by path and
	// query. Transaction mutations clear it wholesale.
	dashCache    *cache.LRUCache[[]byte]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and caching, returning a ready-to-run server.
func NewServer(cfg Config, transactions *services.TransactionService, dashboard *services.DashboardService, store *storage.SQLiteRepository, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		transactions: transactions,
		dashboard:    dashboard,
		store:        store,
		goals:        store,
		logger:       logger.WithComponent(log.ComponentHTTP),
		dashCache:    cache.NewLRUCache[[]byte](cfg.SnapshotCacheSize, cfg.SnapshotCacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.dashCache)
	s.cacheManager.StartCleanup(time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/dashboard/stats", s.cached(s.handleStats))
	mux.HandleFunc("GET /api/dashboard/monthly", s.cached(s.handleMonthly))
	mux.HandleFunc("GET /api/dashboard/categories", s.cached(s.handleCategories))
	mux.HandleFunc("GET /api/dashboard/trend", s.cached(s.handleTrend))
	mux.HandleFunc("GET /api/dashboard/income-sources", s.cached(s.handleIncomeSources))
	mux.HandleFunc("GET /api/dashboard/top-expenses", s.cached(s.handleTopExpenses))
	mux.HandleFunc("GET /api/dashboard/patterns", s.cached(s.handlePatterns))

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleUpsertBudget)
	mux.HandleFunc("DELETE /api/budgets/{category}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/goal", s.handleGetGoal)
	mux.HandleFunc("PUT /api/goal", s.handlePutGoal)
	mux.HandleFunc("DELETE /api/goal", s.handleDeleteGoal)

	mux.HandleFunc("GET /api/bills", s.handleListBills)
	mux.HandleFunc("POST /api/bills", s.handleCreateBill)
	mux.HandleFunc("POST /api/bills/{id}/toggle", s.handleToggleBill)
	mux.HandleFunc("DELETE /api/bills/{id}", s.handleDeleteBill)

	limitCfg := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = cfg.RateLimitPerMinute
	}
	s.limiter = ratelimit.NewLimiter(limitCfg)
	clientIP := security.NewClientIPExtractor()

	handler := log.Middleware(s.logger)(
		log.RequestIDMiddleware(requestID)(
			security.Headers(security.DefaultHeadersConfig())(
				s.limiter.Middleware(clientIP.FromRequest, rateLimited)(mux))))

	s.Server = http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return s
}

// Shutdown stops the cache sweeper, then drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateDashboard drops every memoized dashboard response. Called after
// any transaction mutation so reads never serve stale aggregates past the
// cache TTL.
func (s *Server) invalidateDashboard() {
	s.dashCache.Clear()
}

// cached memoizes a GET handler's successful JSON output in the LRU cache.
func (s *Server) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}

		if body, ok := s.dashCache.Get(key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			_, _ = w.Write(body)
			return
		}

		rec := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		if rec.status == http.StatusOK {
			s.dashCache.Set(key, rec.body)
		}
	}
}

// captureWriter tees the response body so it can be cached.
type captureWriter struct {
	http.ResponseWriter
	status int
	body   []byte
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.status == http.StatusOK {
		w.body = append(w.body, b...)
	}
	return w.ResponseWriter.Write(b)
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.transactions.List(r.Context()); err != nil {
		http.Error(w, "storage not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
