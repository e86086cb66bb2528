// ABOUTME: Hub managing one chat controller per session id
// ABOUTME: Guarantees at most one live feed subscription per active session

package chat

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/yosraHouas/YH-Portfolio/internal/identity"
)

const (
	// staleThreshold is how long a session can sit idle before its
	// controller is closed and evicted.
	staleThreshold = 30 * time.Minute
)

// Hub hands out controllers keyed by session id. There is never more than
// one controller (and therefore one feed subscription) per session, no
// matter how many times the widget is opened, closed or reloaded.
type Hub struct {
	mu          sync.Mutex
	controllers map[string]*hubEntry
	identityDir string
	store       MessageStore
	feed        Feed
	logger      *slog.Logger
	cancel      context.CancelFunc
}

type hubEntry struct {
	controller *Controller
	lastUsed   time.Time
}

// NewHub creates a hub. Identity files live under identityDir, one per
// session id. A background goroutine evicts idle sessions.
func NewHub(identityDir string, msgStore MessageStore, fd Feed, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		controllers: make(map[string]*hubEntry),
		identityDir: identityDir,
		store:       msgStore,
		feed:        fd,
		logger:      logger.With("component", "chat-hub"),
		cancel:      cancel,
	}
	go h.cleanupLoop(ctx)
	return h
}

// GetOrCreate returns the controller for a session id, building it on first
// use. An empty session id mints a fresh session. A presented id that has no
// identity file yet (the widget remembered a session this server never saw)
// is adopted as-is, never regenerated.
func (h *Hub) GetOrCreate(sessionID string) *Controller {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionID == "" {
		sessionID = identity.MintSessionID()
	}

	if entry, ok := h.controllers[sessionID]; ok {
		entry.lastUsed = time.Now()
		return entry.controller
	}

	ids := identity.NewStore(filepath.Join(h.identityDir, sessionID+".json"))
	if _, ok := ids.Load(); !ok {
		// Persist the session id alone; identity fields follow on submission.
		if err := ids.Save(&identity.Session{SessionID: sessionID}); err != nil {
			h.logger.Warn("seeding identity file", "session_id", sessionID, "error", err)
		}
	}
	c := NewController(ids, h.store, h.feed, h.logger)

	h.controllers[sessionID] = &hubEntry{controller: c, lastUsed: time.Now()}
	return c
}

// Get returns the controller for a session id if one is live.
func (h *Hub) Get(sessionID string) (*Controller, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.controllers[sessionID]
	if !ok {
		return nil, false
	}
	entry.lastUsed = time.Now()
	return entry.controller, true
}

// cleanupLoop periodically evicts controllers idle past staleThreshold,
// closing their subscriptions.
func (h *Hub) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.evictStale()
		}
	}
}

func (h *Hub) evictStale() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for key, entry := range h.controllers {
		if now.Sub(entry.lastUsed) > staleThreshold {
			entry.controller.Close()
			delete(h.controllers, key)
			h.logger.Debug("evicted idle session", "session_id", key)
		}
	}
}

// Close shuts down the hub, closing every controller.
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	for key, entry := range h.controllers {
		entry.controller.Close()
		delete(h.controllers, key)
	}
}
