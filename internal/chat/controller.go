// ABOUTME: Chat session controller owning one visitor's widget state machine
// ABOUTME: Merges backfilled history, optimistic sends and realtime pushes into one mirror

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/yosraHouas/YH-Portfolio/internal/identity"
	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

// State is the chat widget's lifecycle state for one session.
type State string

const (
	// StateAnonymous: a session id exists (minted or loaded) but the widget
	// has not been opened and no identity has been collected.
	StateAnonymous State = "anonymous"
	// StateAwaitingIdentity: the widget is open and asking for name/email.
	StateAwaitingIdentity State = "awaiting_identity"
	// StateActive: identity collected, history loaded, realtime feed attached.
	StateActive State = "active"
)

// ErrIdentityRequired is returned when name or email is empty after trimming.
var ErrIdentityRequired = errors.New("name and email are required")

// ErrNotActive is returned when an operation needs an active session.
var ErrNotActive = errors.New("chat session is not active")

// MessageStore is the slice of the store the controller needs.
type MessageStore interface {
	InsertChatMessage(ctx context.Context, msg *store.ChatMessage) (*store.ChatMessage, error)
	ChatMessagesBySession(ctx context.Context, sessionID string) ([]*store.ChatMessage, error)
}

// Feed is the change-notification channel the controller subscribes to while
// active. Delivery is at-least-once; the controller dedups by message id.
type Feed interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan *store.ChatMessage, string)
	Unsubscribe(sessionID, subID string)
}

// Controller owns the state machine of a single visitor's chat session. All
// mutation of the message mirror happens under one mutex, shared by the
// caller-driven operations and the feed consumer goroutine, so realtime
// pushes and optimistic local appends never interleave mid-update.
type Controller struct {
	mu      sync.Mutex
	session identity.Session
	ids     *identity.Store
	store   MessageStore
	feed    Feed
	logger  *slog.Logger

	state  State
	mirror []*store.ChatMessage
	seen   map[string]struct{}

	subCancel context.CancelFunc
	closed    bool
}

// NewController builds the controller for one session. The identity store is
// loaded once, here; if no session was saved, a fresh session id is minted
// and persisted alone. If a complete identity was saved, the controller goes
// straight to StateActive, backfills history and attaches the feed.
func NewController(ids *identity.Store, msgStore MessageStore, fd Feed, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		ids:    ids,
		store:  msgStore,
		feed:   fd,
		state:  StateAnonymous,
		seen:   make(map[string]struct{}),
		logger: logger.With("component", "chat"),
	}

	sess, ok := ids.Load()
	if ok {
		c.session = *sess
	} else {
		c.session = identity.Session{SessionID: identity.MintSessionID()}
		if err := ids.Save(&c.session); err != nil {
			// Capability unavailable: the session still works for this run,
			// it just won't survive a restart.
			c.logger.Warn("identity store unavailable, session will not persist", "error", err)
		}
	}
	c.logger = c.logger.With("session_id", c.session.SessionID)

	if c.session.Identified() {
		c.mu.Lock()
		c.activateLocked(context.Background())
		c.mu.Unlock()
	}

	return c
}

// Open transitions an anonymous session to awaiting-identity. Opening an
// already-open or active widget changes nothing, and in particular never
// creates a second feed subscription.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAnonymous {
		c.state = StateAwaitingIdentity
	}
}

// SubmitIdentity records the visitor's name and email and activates the
// session: the full history is fetched and the realtime feed attached.
// Whitespace-only values are rejected with ErrIdentityRequired and the state
// stays StateAwaitingIdentity.
func (c *Controller) SubmitIdentity(ctx context.Context, name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return ErrIdentityRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrNotActive
	}

	c.session.VisitorName = name
	c.session.VisitorEmail = email
	if err := c.ids.Save(&c.session); err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}

	if c.state != StateActive {
		c.activateLocked(ctx)
	}
	return nil
}

// activateLocked loads history wholesale and attaches the feed. Must be
// called with mu held and only when not already active.
func (c *Controller) activateLocked(ctx context.Context) {
	history, err := c.store.ChatMessagesBySession(ctx, c.session.SessionID)
	if err != nil {
		// Degrade to an empty mirror; realtime pushes still arrive.
		c.logger.Error("loading chat history", "error", err)
		history = nil
	}

	// Replace the mirror wholesale and rebuild the dedup set.
	c.mirror = history
	c.seen = make(map[string]struct{}, len(history))
	for _, msg := range history {
		c.seen[msg.ID] = struct{}{}
	}

	subCtx, cancel := context.WithCancel(context.Background())
	c.subCancel = cancel
	ch, subID := c.feed.Subscribe(subCtx, c.session.SessionID)
	c.state = StateActive

	c.logger.Debug("session activated", "history", len(history), "sub_id", subID)

	go c.consume(ch)
}

// consume applies realtime pushes to the mirror until the feed channel is
// closed by unsubscription.
func (c *Controller) consume(ch <-chan *store.ChatMessage) {
	for msg := range ch {
		c.mu.Lock()
		c.applyLocked(msg)
		c.mu.Unlock()
	}
}

// applyLocked appends a message to the mirror, keyed by id so redelivered
// messages are applied at most once. The mirror stays stably sorted by
// created_at: equal timestamps keep their arrival order. Must be called with
// mu held.
func (c *Controller) applyLocked(msg *store.ChatMessage) {
	if _, dup := c.seen[msg.ID]; dup {
		return
	}
	c.seen[msg.ID] = struct{}{}
	c.mirror = append(c.mirror, msg)
	sort.SliceStable(c.mirror, func(i, j int) bool {
		return c.mirror[i].CreatedAt.Before(c.mirror[j].CreatedAt)
	})
}

// Send writes a visitor message to the store and applies the echoed row to
// the mirror directly, without waiting for the realtime echo. A message that
// is empty after trimming is a no-op returning (nil, nil).
func (c *Controller) Send(ctx context.Context, text string) (*store.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive || c.closed {
		return nil, ErrNotActive
	}

	echo, err := c.store.InsertChatMessage(ctx, &store.ChatMessage{
		SessionID:    c.session.SessionID,
		VisitorName:  c.session.VisitorName,
		VisitorEmail: c.session.VisitorEmail,
		Message:      text,
		IsFromAdmin:  false,
	})
	if err != nil {
		return nil, fmt.Errorf("sending chat message: %w", err)
	}

	// Optimistic append; the feed's redelivery of the same id is a no-op.
	c.applyLocked(echo)
	return echo, nil
}

// Messages returns a snapshot of the mirror in display order.
func (c *Controller) Messages() []*store.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*store.ChatMessage, len(c.mirror))
	copy(out, c.mirror)
	return out
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a copy of the controller's session identity.
func (c *Controller) Session() identity.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Close releases the feed subscription. Safe to call more than once; the
// subscription is released exactly once.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.subCancel != nil {
		c.subCancel()
		c.subCancel = nil
	}
}
