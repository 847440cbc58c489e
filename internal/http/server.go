// Package http serves the statistics dashboard, its HTMX partials, the
// assistant chat and the live refresh websocket.
package http

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"estoque/internal/backend"
	"estoque/internal/chatbot"
	"estoque/internal/components"
	"estoque/internal/live"
	"estoque/internal/log"
	"estoque/internal/middleware/ratelimit"
	"estoque/internal/middleware/security"
	"estoque/internal/middleware/trace"
	"estoque/internal/statistics"
	appweb "estoque/web"
)

const (
	// partialTimeout bounds the data load behind a single partial.
	partialTimeout = 7 * time.Second
	readyTimeout   = 5 * time.Second
	staticMaxAge   = 3600

	tooManyRequestsText = "Muitas requisições. Tente novamente em instantes."
)

// ChatClient is the assistant backend.
type ChatClient interface {
	SendMessage(ctx context.Context, req chatbot.ChatRequest) (*chatbot.ChatResponse, error)
	SendImageMessage(ctx context.Context, req chatbot.ChatRequest) (*chatbot.ChatResponse, error)
	SendAudioMessage(ctx context.Context, req chatbot.ChatRequest) (*chatbot.ChatResponse, error)
	GetChatHistory(ctx context.Context) ([]chatbot.ChatHistoryEntry, error)
}

// Refresher invalidates statistics and tells open pages to reload.
type Refresher interface {
	Refresh(ctx context.Context, reason string, transactionID int64)
}

// Dependencies are the collaborators of a Server. Stats is required; a nil
// Renderer parses the embedded templates. Writer, Chat, Hub and Refresher
// are optional and their routes degrade when missing.
type Dependencies struct {
	Stats     *statistics.Service
	Renderer  *components.Renderer
	Writer    backend.TransactionWriter
	Chat      ChatClient
	Hub       *live.Hub
	Refresher Refresher

	RateLimitPerMinute int
	Logger             *log.Logger
	// Now anchors relative times; nil means time.Now.
	Now func() time.Time
}

type appMetrics struct {
	transactionsCreated int64
	chatMessages        int64
	partialErrors       int64
	uptime              time.Time
}

// Server is the dashboard HTTP server.
type Server struct {
	http.Server
	logger    *log.Logger
	renderer  *components.Renderer
	stats     *statistics.Service
	writer    backend.TransactionWriter
	chat      ChatClient
	hub       *live.Hub
	refresher Refresher

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics
	now              func() time.Time

	shutdownOnce sync.Once
}

// NewServer wires middleware and routes, returning a ready-to-run server.
func NewServer(addr string, deps Dependencies) (*Server, error) {
	if deps.Stats == nil {
		return nil, errors.New("statistics service is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	renderer := deps.Renderer
	if renderer == nil {
		var err error
		if renderer, err = components.NewRenderer(appweb.TemplatesFS); err != nil {
			return nil, err
		}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	detector := security.NewDetector(logger)
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:           logger.WithComponent(log.ComponentHTTP),
		renderer:         renderer,
		stats:            deps.Stats,
		writer:           deps.Writer,
		chat:             deps.Chat,
		hub:              deps.Hub,
		refresher:        deps.Refresher,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}, logger),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger.WithComponent(log.ComponentHTTP), detector.ExtractClientIP),
		appMetrics:       &appMetrics{uptime: now()},
		now:              now,
	}

	handler, err := s.routes()
	if err != nil {
		s.rateLimiter.Stop()
		return nil, err
	}
	s.Handler = handler
	return s, nil
}

func (s *Server) routes() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(s.securityDetector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	limited := r.With(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, _ *http.Request) {
		ErrorFragment(http.StatusTooManyRequests, tooManyRequestsText).
			Notify(NotificationError, tooManyRequestsText).
			Write(w)
	}))

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	r.With(security.StaticAssetMiddleware(staticMaxAge)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Get("/", s.handleDashboard)
	r.Route("/ui", func(r chi.Router) {
		r.Get("/monthly-expenses", s.handleMonthlyExpenses)
		r.Get("/charts/{chart}", s.handleChart)
		r.Get("/transactions", s.handleTransactions)
		r.Get("/transactions/{id}", s.handleTransactionDetail)
	})

	r.Get("/api/statistics", s.handleStatisticsJSON)
	limited.Post("/api/transactions", s.handleCreateTransaction)

	r.Get("/chat", s.handleChatPage)
	r.Get("/chat/history", s.handleChatHistory)
	limited.Post("/chat/message", s.handleChatMessage)

	if s.hub != nil {
		r.Get("/ws", s.hub.ServeHTTP)
	}
	return r, nil
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
