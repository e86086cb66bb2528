// ABOUTME: HTTP boundary for portfolio-server
// ABOUTME: Wires routes, permissive CORS, preflight handling and health probes

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yosraHouas/YH-Portfolio/internal/chat"
	"github.com/yosraHouas/YH-Portfolio/internal/feed"
	"github.com/yosraHouas/YH-Portfolio/internal/notify"
	"github.com/yosraHouas/YH-Portfolio/internal/store"
	"github.com/yosraHouas/YH-Portfolio/internal/track"
)

// Server hosts the site's backend API: contact intake, chat messaging with
// realtime delivery, view tracking and the operator dashboard reads.
type Server struct {
	store             store.Store
	hub               *chat.Hub
	feed              *feed.Broadcaster
	tracker           *track.Tracker
	notifier          *notify.Notifier
	heartbeatInterval time.Duration
	logger            *slog.Logger
	httpServer        *http.Server
}

// New creates a server. heartbeatInterval paces SSE keepalive comments.
func New(st store.Store, hub *chat.Hub, fd *feed.Broadcaster, tracker *track.Tracker, notifier *notify.Notifier, heartbeatInterval time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:             st,
		hub:               hub,
		feed:              fd,
		tracker:           tracker,
		notifier:          notifier,
		heartbeatInterval: heartbeatInterval,
		logger:            logger.With("component", "server"),
	}
}

// Handler builds the full route table wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/contact", s.handleContact)
	mux.HandleFunc("/api/views", s.handleTrackView)

	mux.HandleFunc("/api/chat/messages", s.handleChatMessages)
	mux.HandleFunc("/api/chat/stream", s.handleChatStream)

	mux.HandleFunc("/api/admin/dashboard", s.handleAdminDashboard)
	mux.HandleFunc("/api/admin/chat-messages", s.handleAdminChatMessages)
	mux.HandleFunc("/api/admin/chat-messages/", s.handleChatMessageRead)
	mux.HandleFunc("/api/admin/contact-messages", s.handleAdminContactMessages)
	mux.HandleFunc("/api/admin/contact-messages/", s.handleContactMessageReplied)

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/ready", s.handleReady)

	return corsMiddleware(mux)
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("HTTP server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds the permissive cross-origin headers every response
// carries, and answers preflight requests with an empty 200.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-Info, Apikey")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Readiness means the store answers; an empty database is still ready.
	if _, err := s.store.DailyStats(r.Context(), 1); err != nil {
		s.sendJSONError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// clientIP extracts the visitor's IP. Deployments sit behind a proxy, so the
// first X-Forwarded-For hop wins; otherwise the connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeSSEEvent writes one SSE frame.
func writeSSEEvent(w http.ResponseWriter, event string, data any) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling SSE data: %w", err)
	}
	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
	return nil
}
