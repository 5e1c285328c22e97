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

	"tradebook/internal/cache"
	"tradebook/internal/core"
	"tradebook/internal/journal"
	"tradebook/internal/llm"
	applog "tradebook/internal/log"
)

// JournalService is the application surface the HTTP layer exposes.
type JournalService interface {
	MonthlyJournal(ctx context.Context, month string) (*journal.MonthlyView, error)
	Calendar(ctx context.Context, reference time.Time) (*journal.CalendarView, error)
	AddTrade(ctx context.Context, rec core.TradeRecord) (core.TradeRecord, error)
	GetTrade(ctx context.Context, id string) (core.TradeRecord, error)
	AddSetup(ctx context.Context, setup core.Setup) (core.Setup, error)
	ListSetups(ctx context.Context) ([]core.Setup, error)
	AddPair(ctx context.Context, symbol string) (core.TradingPair, error)
	ListPairs(ctx context.Context) ([]core.TradingPair, error)
	UpdatePair(ctx context.Context, id, symbol string) (core.TradingPair, error)
	DeletePair(ctx context.Context, id string) error
}

type Server struct {
	http.Server
	svc       JournalService
	assistant llm.Assistant

	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// Read-path caches keyed by month / reference date
	journalCache  *cache.LRUCache[*journal.MonthlyView]
	calendarCache *cache.LRUCache[*journal.CalendarView]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
// A nil assistant disables the chat endpoint gracefully.
func NewServer(addr string, svc JournalService, assistant llm.Assistant) *Server {
	mux := http.NewServeMux()

	if assistant == nil {
		assistant = llm.NewNoopAssistant()
	}

	httpLogger := applog.New(applog.Config{Component: applog.ComponentHTTP})

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(httpLogger)(mux),
		},
		svc:           svc,
		assistant:     assistant,
		rateLimiter:   newRateLimiter(),
		metrics:       &securityMetrics{},
		journalCache:  cache.NewLRUCache[*journal.MonthlyView](100, 5*time.Minute),
		calendarCache: cache.NewLRUCache[*journal.CalendarView](200, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.journalCache)
	s.cacheManager.Register(s.calendarCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/journal", s.withMiddleware(s.handleJournal))
	mux.HandleFunc("/api/calendar", s.withMiddleware(s.handleCalendarGrid))
	mux.HandleFunc("/api/trades", s.withMiddleware(s.handleTrades))
	mux.HandleFunc("/api/trades/", s.withMiddleware(s.handleTradeByID))
	mux.HandleFunc("/api/setups", s.withMiddleware(s.handleSetups))
	mux.HandleFunc("/api/pairs", s.withMiddleware(s.handlePairs))
	mux.HandleFunc("/api/pairs/", s.withMiddleware(s.handlePairByID))
	mux.HandleFunc("/api/chat", s.withMiddleware(s.handleChat))

	return s
}

// Shutdown stops the cache cleanup and rate limiter goroutines before
// shutting down the underlying HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, and request
// logging around a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		sl := applog.NewStructuredLogger(applog.FromContext(ctx).With(applog.FieldRequestID, requestID))
		sl.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request detected",
				"request_id", requestID, "client_ip", clientIP, "url", r.URL.Path)
		}

		// Rate limit mutating requests only, reads are cached anyway.
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		sl.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
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

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateMonth drops the cached journal view for a month. Calendar
// entries are keyed by reference date, so the whole calendar cache goes.
func (s *Server) invalidateMonth(month string) {
	s.journalCache.Delete(month)
	s.calendarCache.Purge()
}

func (s *Server) invalidateAll() {
	s.journalCache.Purge()
	s.calendarCache.Purge()
}
