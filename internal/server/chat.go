// ABOUTME: Chat endpoints: send, history, and the SSE realtime stream
// ABOUTME: Session ids route through the hub so each session has one controller

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yosraHouas/YH-Portfolio/internal/chat"
	"github.com/yosraHouas/YH-Portfolio/internal/identity"
	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

// ChatSendRequest is the JSON request body for POST /api/chat/messages.
// SessionID may be empty on the very first interaction; the response then
// carries the minted id for the widget to remember. Name and email are only
// needed until the session is identified.
type ChatSendRequest struct {
	SessionID    string `json:"session_id"`
	VisitorName  string `json:"visitor_name"`
	VisitorEmail string `json:"visitor_email"`
	Message      string `json:"message"`
}

// ChatSendResponse is the JSON response for a sent message.
type ChatSendResponse struct {
	SessionID string             `json:"session_id"`
	Data      *store.ChatMessage `json:"data"`
}

// ChatHistoryResponse is the JSON response for GET /api/chat/messages.
type ChatHistoryResponse struct {
	SessionID string               `json:"session_id"`
	State     chat.State           `json:"state"`
	Messages  []*store.ChatMessage `json:"messages"`
}

// validSessionID accepts an empty id (a new session) or a well-formed one.
// Session ids become identity file names, so garbage is rejected before it
// reaches the filesystem.
func validSessionID(id string) bool {
	return id == "" || identity.IsSessionID(id)
}

// handleChatMessages handles POST (send) and GET (history) on
// /api/chat/messages.
func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleChatSend(w, r)
	case http.MethodGet:
		s.handleChatHistory(w, r)
	default:
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleChatSend routes a visitor message through the session's controller.
// Identity fields in the request activate a not-yet-identified session first.
func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var req ChatSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validSessionID(req.SessionID) {
		s.sendJSONError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	controller := s.hub.GetOrCreate(req.SessionID)
	controller.Open()

	if controller.State() != chat.StateActive {
		if err := controller.SubmitIdentity(r.Context(), req.VisitorName, req.VisitorEmail); err != nil {
			if errors.Is(err, chat.ErrIdentityRequired) {
				s.sendJSONError(w, http.StatusBadRequest, "name and email are required")
				return
			}
			s.logger.Error("submitting chat identity", "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	echo, err := controller.Send(r.Context(), req.Message)
	if err != nil {
		s.logger.Error("sending chat message", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if echo == nil {
		// Empty after trimming: a no-op at the controller, a 400 here.
		s.sendJSONError(w, http.StatusBadRequest, "message is required")
		return
	}

	s.writeJSON(w, http.StatusOK, ChatSendResponse{
		SessionID: controller.Session().SessionID,
		Data:      echo,
	})
}

// handleChatHistory returns the session's message mirror in display order.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" || !identity.IsSessionID(sessionID) {
		s.sendJSONError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	controller := s.hub.GetOrCreate(sessionID)
	msgs := controller.Messages()
	if msgs == nil {
		msgs = []*store.ChatMessage{}
	}

	s.writeJSON(w, http.StatusOK, ChatHistoryResponse{
		SessionID: controller.Session().SessionID,
		State:     controller.State(),
		Messages:  msgs,
	})
}

// handleChatStream handles GET /api/chat/stream: an SSE stream of messages
// inserted for the session. The subscription lives exactly as long as the
// request context; navigating away releases it.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" || !identity.IsSessionID(sessionID) {
		s.sendJSONError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch, subID := s.feed.Subscribe(r.Context(), sessionID)
	s.logger.Debug("chat stream opened", "session_id", sessionID, "sub_id", subID)
	defer s.logger.Debug("chat stream closed", "session_id", sessionID, "sub_id", subID)

	writeSSEEvent(w, "connected", map[string]string{"session_id": sessionID})
	flusher.Flush()

	heartbeat := time.NewTicker(s.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case msg, open := <-ch:
			if !open {
				return
			}
			if err := writeSSEEvent(w, "message", msg); err != nil {
				s.logger.Error("writing SSE message", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
