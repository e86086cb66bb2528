// ABOUTME: Operator dashboard reads and read-state toggles
// ABOUTME: Dashboard panels degrade to empty on read failure; toggles mutate the store first

package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yosraHouas/YH-Portfolio/internal/analytics"
	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

// handleAdminDashboard handles GET /api/admin/dashboard: the three analytics
// reads folded into one response. Individual read failures render as empty
// panels, never as an error status.
func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dashboard := analytics.Load(r.Context(), s.store, time.Now(), s.logger)
	s.writeJSON(w, http.StatusOK, dashboard)
}

// handleAdminChatMessages handles GET /api/admin/chat-messages: every chat
// message across all sessions, newest first.
func (s *Server) handleAdminChatMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	msgs, err := s.store.AllChatMessages(r.Context())
	if err != nil {
		s.logger.Error("listing chat messages", "error", err)
		msgs = nil
	}
	if msgs == nil {
		msgs = []*store.ChatMessage{}
	}
	s.writeJSON(w, http.StatusOK, msgs)
}

// handleAdminContactMessages handles GET /api/admin/contact-messages.
func (s *Server) handleAdminContactMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	msgs, err := s.store.AllContactMessages(r.Context())
	if err != nil {
		s.logger.Error("listing contact messages", "error", err)
		msgs = nil
	}
	if msgs == nil {
		msgs = []*store.ContactMessage{}
	}
	s.writeJSON(w, http.StatusOK, msgs)
}

// handleChatMessageRead handles POST /api/admin/chat-messages/{id}/read.
func (s *Server) handleChatMessageRead(w http.ResponseWriter, r *http.Request) {
	id, ok := toggleID(r, "/api/admin/chat-messages/", "read")
	if !ok {
		s.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.markDone(w, r, id, s.store.MarkChatMessageRead)
}

// handleContactMessageReplied handles POST /api/admin/contact-messages/{id}/replied.
func (s *Server) handleContactMessageReplied(w http.ResponseWriter, r *http.Request) {
	id, ok := toggleID(r, "/api/admin/contact-messages/", "replied")
	if !ok {
		s.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.markDone(w, r, id, s.store.MarkContactMessageReplied)
}

// markDone runs one read-state toggle. The store update happens first; the
// caller's mirror only changes on a 200, so a failure leaves everything
// actionable for a retry. Toggling twice is idempotent and non-destructive.
func (s *Server) markDone(w http.ResponseWriter, r *http.Request, id string, mark func(ctx context.Context, id string) error) {
	err := mark(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "no record with that id")
		return
	}
	if err != nil {
		s.logger.Error("marking record done", "id", id, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// toggleID extracts the record id from a path of the shape
// {prefix}{id}/{action}.
func toggleID(r *http.Request, prefix, action string) (string, bool) {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != action {
		return "", false
	}
	return parts[0], true
}
