// ABOUTME: Fire-and-forget page view tracker
// ABOUTME: Records one event per page activation; failures are logged, never surfaced

package track

import (
	"context"
	"log/slog"

	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

// ViewStore is the slice of the store the tracker needs.
type ViewStore interface {
	InsertPageView(ctx context.Context, view *store.PageView) (*store.PageView, error)
}

// Tracker records raw page-view events. Tracking must never block or break
// page rendering, so Record returns nothing: a failed insert is only logged.
type Tracker struct {
	store  ViewStore
	logger *slog.Logger
}

// New creates a tracker.
func New(viewStore ViewStore, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:  viewStore,
		logger: logger.With("component", "track"),
	}
}

// Record inserts one page-view event. Referrer and user agent may be empty.
// The visitor IP comes from the connection at the boundary, never from the
// client payload. No retry, no batching, no dedup: a reload is a new event.
func (t *Tracker) Record(ctx context.Context, pagePath, referrer, userAgent, visitorIP string) {
	if pagePath == "" {
		pagePath = "/"
	}

	_, err := t.store.InsertPageView(ctx, &store.PageView{
		PagePath:  pagePath,
		Referrer:  referrer,
		UserAgent: userAgent,
		VisitorIP: visitorIP,
	})
	if err != nil {
		t.logger.Error("recording page view", "page_path", pagePath, "error", err)
	}
}
