// ABOUTME: Store interface and record types for portfolio-server persistence
// ABOUTME: Defines chat, contact, page view and rollup records plus the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// ChatMessage is a single message in a visitor chat session.
// Immutable once written except for the Read flag, which only moves false->true.
type ChatMessage struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	VisitorName  string    `json:"visitor_name"`
	VisitorEmail string    `json:"visitor_email"`
	Message      string    `json:"message"`
	IsFromAdmin  bool      `json:"is_from_admin"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}

// ContactMessage is one contact-form submission. No session concept.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Replied   bool      `json:"replied"`
	CreatedAt time.Time `json:"created_at"`
}

// PageView is one raw page-view event. Append-only, never mutated.
// VisitorIP is assigned by the server at ingestion time, never by the client.
type PageView struct {
	ID        string    `json:"id"`
	PagePath  string    `json:"page_path"`
	Referrer  string    `json:"referrer,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	VisitorIP string    `json:"visitor_ip"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyStat is a precomputed per-day rollup maintained by the rollup job.
type DailyStat struct {
	Date           string `json:"date"` // YYYY-MM-DD
	TotalViews     int    `json:"total_views"`
	UniqueVisitors int    `json:"unique_visitors"`
	PagesVisited   int    `json:"pages_visited"`
}

// PageStat is a precomputed per-path rollup maintained by the rollup job.
type PageStat struct {
	PagePath       string    `json:"page_path"`
	ViewCount      int       `json:"view_count"`
	UniqueVisitors int       `json:"unique_visitors"`
	LastViewed     time.Time `json:"last_viewed"`
}

// ChatPublisher receives chat messages after they are committed.
// The feed broadcaster satisfies this; the store calls it on every insert so
// subscribers see inserts regardless of which code path wrote them.
type ChatPublisher interface {
	Publish(sessionID string, msg *ChatMessage)
}

// Store is the durable record store consumed by the rest of the system.
// Insert methods echo the persisted row, including server-assigned id and
// created_at. Mark methods are single-field false->true updates and are
// idempotent.
type Store interface {
	// Chat messages
	InsertChatMessage(ctx context.Context, msg *ChatMessage) (*ChatMessage, error)
	ChatMessagesBySession(ctx context.Context, sessionID string) ([]*ChatMessage, error)
	AllChatMessages(ctx context.Context) ([]*ChatMessage, error)
	MarkChatMessageRead(ctx context.Context, id string) error

	// Contact messages
	InsertContactMessage(ctx context.Context, msg *ContactMessage) (*ContactMessage, error)
	AllContactMessages(ctx context.Context) ([]*ContactMessage, error)
	MarkContactMessageReplied(ctx context.Context, id string) error

	// Page views
	InsertPageView(ctx context.Context, view *PageView) (*PageView, error)
	AllPageViews(ctx context.Context) ([]*PageView, error)

	// Rollups. DailyStats and PageStats are read by the dashboard; the upserts
	// are only called by the rollup job.
	DailyStats(ctx context.Context, limit int) ([]*DailyStat, error)
	PageStats(ctx context.Context) ([]*PageStat, error)
	UpsertDailyStat(ctx context.Context, stat *DailyStat) error
	UpsertPageStat(ctx context.Context, stat *PageStat) error

	Close() error
}
