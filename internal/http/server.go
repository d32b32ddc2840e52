package http

import (
	"container/list"
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/core"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/services"
	appweb "github.com/solomonubom54-png/biverway-finance-tracker-v2/web"
)

// LRU cache with TTL and size-based eviction
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

// Purge drops every entry. Bulk operations that touch all periods at
// once cannot invalidate key by key.
func (c *lruCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries.
func (c *lruCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*cacheItem[T])
		if now.After(item.expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

// ledgerView is the cached data behind the ledger partial.
type ledgerView struct {
	Incomes  []core.IncomeEntry
	Expenses []core.ExpenseEntry
}

// reviewView is the cached data behind the review partial.
type reviewView struct {
	Summary  core.Summary
	Insights core.Insights
}

type Server struct {
	http.Server
	templates   *template.Template
	ledger      *services.LedgerService
	planner     *services.AllocationService
	rateLimiter *rateLimiter

	// Per-period LRU caches for the heavy partials. Any write to a
	// period invalidates both.
	ledgerCache *lruCache[ledgerView]
	reviewCache *lruCache[reviewView]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ledger *services.LedgerService, planner *services.AllocationService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:           ledger,
		planner:          planner,
		rateLimiter:      newRateLimiter(),
		ledgerCache:      newLRUCache[ledgerView](100, 5*time.Minute),
		reviewCache:      newLRUCache[reviewView](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/income", s.withSecurityHeaders(s.handleCreateIncome))
	mux.HandleFunc("/income/delete", s.withSecurityHeaders(s.handleDeleteIncome))
	mux.HandleFunc("/income/clear", s.withSecurityHeaders(s.handleClearIncome))
	mux.HandleFunc("/expense", s.withSecurityHeaders(s.handleCreateExpense))
	mux.HandleFunc("/expense/delete", s.withSecurityHeaders(s.handleDeleteExpense))
	mux.HandleFunc("/expense/clear", s.withSecurityHeaders(s.handleClearExpense))

	// UI partials
	mux.HandleFunc("/ui/ledger", s.withSecurityHeaders(s.handleLedger))
	mux.HandleFunc("/ui/review", s.withSecurityHeaders(s.handleReview))
	mux.HandleFunc("/ui/allocation", s.withSecurityHeaders(s.handleAllocation))
	mux.HandleFunc("/allocation/save", s.withSecurityHeaders(s.handleSaveAllocation))

	return s
}

// startCacheCleanup runs periodic cleanup for both caches.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ledgerCleaned := s.ledgerCache.CleanExpired()
			reviewCleaned := s.reviewCache.CleanExpired()
			if ledgerCleaned > 0 || reviewCleaned > 0 {
				slog.Debug("Cache cleanup completed",
					"ledger_entries_removed", ledgerCleaned,
					"review_entries_removed", reviewCleaned)
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

func (s *Server) invalidatePeriod(p core.Period) {
	s.ledgerCache.Delete(string(p))
	s.reviewCache.Delete(string(p))
}

func (s *Server) getLedger(ctx context.Context, p core.Period) (ledgerView, error) {
	if lv, found := s.ledgerCache.Get(string(p)); found {
		slog.DebugContext(ctx, "Ledger cache hit", "period", p)
		return lv, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	incomes, err := s.ledger.IncomesFor(cctx, p)
	if err != nil {
		return ledgerView{}, err
	}
	expenses, err := s.ledger.ExpensesFor(cctx, p)
	if err != nil {
		return ledgerView{}, err
	}

	lv := ledgerView{Incomes: incomes, Expenses: expenses}
	s.ledgerCache.Set(string(p), lv)
	return lv, nil
}

func (s *Server) getReview(ctx context.Context, p core.Period) (reviewView, error) {
	if rv, found := s.reviewCache.Get(string(p)); found {
		slog.DebugContext(ctx, "Review cache hit", "period", p)
		return rv, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	summary, insights, err := s.ledger.Review(cctx, p)
	if err != nil {
		return reviewView{}, err
	}

	rv := reviewView{Summary: summary, Insights: insights}
	s.reviewCache.Set(string(p), rv)
	return rv, nil
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

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

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
