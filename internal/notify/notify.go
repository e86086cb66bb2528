// ABOUTME: Outbound email notifier for new contact submissions
// ABOUTME: Posts to a Resend-compatible HTTP API, fire-and-forget, never blocks the caller

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

// defaultAPIURL is Resend's email endpoint.
const defaultAPIURL = "https://api.resend.com/emails"

// Notifier sends the operator an email for each new contact submission.
// Failures are logged and reported as sent=false; they are never escalated,
// because the contact record already committed and is the source of truth.
type Notifier struct {
	apiURL string
	apiKey string
	from   string
	to     string
	client *http.Client
	logger *slog.Logger
}

// New creates a notifier. An empty apiKey disables sending entirely:
// Notify then returns sent=false without a network call.
func New(apiURL, apiKey, from, to string) *Notifier {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Notifier{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		to:     to,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: slog.Default().With("component", "notify"),
	}
}

// emailRequest is the JSON body of the Resend send-email call.
type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Notify emails the operator about a contact submission. Returns whether the
// email was accepted by the API; any failure is logged and swallowed.
func (n *Notifier) Notify(ctx context.Context, msg *store.ContactMessage) bool {
	if n.apiKey == "" {
		n.logger.Info("notifier disabled, skipping email", "contact_id", msg.ID)
		return false
	}

	html, err := renderBody(msg)
	if err != nil {
		n.logger.Error("rendering notification body", "contact_id", msg.ID, "error", err)
		return false
	}

	body, err := json.Marshal(emailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: "New contact message: " + msg.Subject,
		HTML:    html,
	})
	if err != nil {
		n.logger.Error("encoding notification request", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("building notification request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("sending notification email", "contact_id", msg.ID, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		n.logger.Error("notification email rejected",
			"contact_id", msg.ID,
			"status", resp.StatusCode,
			"detail", string(detail))
		return false
	}

	n.logger.Info("notification email sent", "contact_id", msg.ID)
	return true
}

// bodyTemplate lays out the operator notification. The message text is
// rendered from markdown separately and injected pre-escaped.
var bodyTemplate = template.Must(template.New("contact").Parse(`<div style="font-family: Arial, sans-serif; max-width: 700px; margin: 0 auto;">
  <h2 style="border-bottom: 2px solid #14b8a6; padding-bottom: 10px;">New contact message</h2>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
  <p><strong>Subject:</strong> {{.Subject}}</p>
  <div style="border-left: 4px solid #14b8a6; padding-left: 16px; margin: 20px 0;">{{.MessageHTML}}</div>
  <p style="color: #666; font-size: 12px;">Received: {{.Received}}</p>
</div>`))

// renderBody builds the HTML email body. The visitor's message is treated as
// markdown and rendered with goldmark; goldmark escapes raw HTML by default,
// so visitor input cannot inject markup into the operator's mail client.
func renderBody(msg *store.ContactMessage) (string, error) {
	var rendered bytes.Buffer
	if err := goldmark.Convert([]byte(msg.Message), &rendered); err != nil {
		return "", fmt.Errorf("rendering message markdown: %w", err)
	}

	var out bytes.Buffer
	err := bodyTemplate.Execute(&out, struct {
		Name        string
		Email       string
		Subject     string
		MessageHTML template.HTML
		Received    string
	}{
		Name:        msg.Name,
		Email:       msg.Email,
		Subject:     msg.Subject,
		MessageHTML: template.HTML(rendered.String()),
		Received:    msg.CreatedAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return "", fmt.Errorf("executing body template: %w", err)
	}
	return out.String(), nil
}
