package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady checks the statistics source and reports local state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := s.stats.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "check", "source", "error", err)
		checks["source"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["source"] = "ok"
	}

	cacheEntries := 0
	if c := s.stats.Cache(); c != nil {
		cacheEntries = c.Size()
	}
	checks["cache"] = map[string]any{"entries": cacheEntries, "status": "ok"}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients(), "status": "ok"}
	if s.hub != nil {
		checks["live"] = map[string]any{"clients": s.hub.Clients(), "status": "ok"}
	}
	checks["writable"] = s.writer != nil

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	cacheEntries := 0
	if c := s.stats.Cache(); c != nil {
		cacheEntries = c.Size()
	}
	liveClients := 0
	if s.hub != nil {
		liveClients = s.hub.Clients()
	}

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}

	w.WriteHeader(http.StatusOK)
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.TotalErrors)
	metric("transactions_created_total", "counter", "Transactions recorded through the API", atomic.LoadInt64(&s.appMetrics.transactionsCreated))
	metric("chat_messages_total", "counter", "Messages sent to the assistant", atomic.LoadInt64(&s.appMetrics.chatMessages))
	metric("partial_render_errors_total", "counter", "Partials that failed to render", atomic.LoadInt64(&s.appMetrics.partialErrors))
	metric("statistics_cache_entries", "gauge", "Cached statistics periods", cacheEntries)
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("live_clients", "gauge", "Open live refresh connections", liveClients)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", s.now().Sub(s.appMetrics.uptime).Seconds()))
}
