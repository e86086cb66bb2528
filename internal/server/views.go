// ABOUTME: Page-view ingestion endpoint feeding the tracker
// ABOUTME: Always answers 202; tracking never blocks or breaks page rendering

package server

import (
	"encoding/json"
	"net/http"
)

// TrackViewRequest is the JSON request body for POST /api/views. The visitor
// IP is deliberately absent: it is assigned here from the connection.
type TrackViewRequest struct {
	PagePath  string `json:"page_path"`
	Referrer  string `json:"referrer"`
	UserAgent string `json:"user_agent"`
}

// handleTrackView handles POST /api/views. Whatever happens, the page that
// fired the beacon gets its 202: malformed bodies and storage failures are
// logged and swallowed.
func (s *Server) handleTrackView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req TrackViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("malformed view beacon", "error", err)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}
	if req.Referrer == "" {
		req.Referrer = r.Referer()
	}

	s.tracker.Record(r.Context(), req.PagePath, req.Referrer, req.UserAgent, clientIP(r))
	w.WriteHeader(http.StatusAccepted)
}
