// ABOUTME: Contact submission endpoint: validation, persistence, best-effort notification
// ABOUTME: The only boundary that surfaces errors to the caller, per the error taxonomy

package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

// emailPattern is the same loose local-part@domain check the site has always
// applied: no whitespace, one @, a dot somewhere in the domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactRequest is the JSON request body for POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactResponse is the JSON response for a successful submission.
type ContactResponse struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message"`
	EmailSent bool                  `json:"emailSent"`
	Data      *store.ContactMessage `json:"data"`
}

// handleContact handles POST /api/contact.
// Validation failures get a 400 with a human-readable message; storage
// failures get a generic 500. The notification email is best-effort: its
// outcome only shows up in the emailSent flag, never in the status code.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		s.sendJSONError(w, http.StatusBadRequest, "all fields are required")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		s.sendJSONError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	saved, err := s.store.InsertContactMessage(r.Context(), &store.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		s.logger.Error("saving contact message", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	emailSent := s.notifier.Notify(r.Context(), saved)

	s.writeJSON(w, http.StatusOK, ContactResponse{
		Success:   true,
		Message:   "Message saved successfully",
		EmailSent: emailSent,
		Data:      saved,
	})
}
