// ABOUTME: In-memory fan-out change feed for inserted chat messages
// ABOUTME: Publishes committed ChatMessage rows to all subscribers of a session id

package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 64
)

// Broadcaster provides in-process pub/sub for inserted chat messages.
// Subscribers register for a session id and receive each message persisted
// for that session. Delivery is at-least-once from the consumer's point of
// view: a subscriber may see a message it already applied locally, so
// consumers must dedup by message id.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan *store.ChatMessage // sessionID -> subID -> ch
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster. Pass nil logger for default.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]map[string]chan *store.ChatMessage),
		logger:      logger.With("component", "feed"),
	}
}

// Subscribe registers a subscriber for messages on the given session id.
// Returns a channel that receives messages and a subscription ID for later
// unsubscription. The subscription is automatically cleaned up when ctx is
// cancelled.
func (b *Broadcaster) Subscribe(ctx context.Context, sessionID string) (<-chan *store.ChatMessage, string) {
	subID := uuid.New().String()
	ch := make(chan *store.ChatMessage, subscriberBufferSize)

	b.mu.Lock()
	if _, ok := b.subscribers[sessionID]; !ok {
		b.subscribers[sessionID] = make(map[string]chan *store.ChatMessage)
	}
	b.subscribers[sessionID][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added",
		"session_id", sessionID,
		"sub_id", subID)

	// Auto-cleanup on context cancellation
	go func() {
		<-ctx.Done()
		b.Unsubscribe(sessionID, subID)
	}()

	return ch, subID
}

// Publish sends a message to all subscribers of the given session id.
// Non-blocking: messages are dropped for subscribers whose channels are full.
func (b *Broadcaster) Publish(sessionID string, msg *store.ChatMessage) {
	b.mu.RLock()
	subs, ok := b.subscribers[sessionID]
	if !ok || len(subs) == 0 {
		b.mu.RUnlock()
		return
	}

	// Copy subscriber channels under read lock to avoid holding lock during sends
	targets := make([]chan *store.ChatMessage, 0, len(subs))
	for _, ch := range subs {
		targets = append(targets, ch)
	}
	b.mu.RUnlock()

	for _, ch := range targets {
		select {
		case ch <- msg:
			// Sent
		default:
			// Subscriber channel full, drop for this subscriber
			b.logger.Debug("dropped message for slow subscriber",
				"session_id", sessionID,
				"message_id", msg.ID)
		}
	}
}

// SubscriberCount returns the number of active subscriptions for a session id.
func (b *Broadcaster) SubscriberCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[sessionID])
}

// Unsubscribe removes a subscription and closes its channel. Calling it for a
// subscription that was already removed is a no-op.
func (b *Broadcaster) Unsubscribe(sessionID, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[sessionID]
	if !ok {
		return
	}

	ch, exists := subs[subID]
	if !exists {
		return
	}

	delete(subs, subID)
	close(ch)

	// Clean up empty session entries
	if len(subs) == 0 {
		delete(b.subscribers, sessionID)
	}

	b.logger.Debug("subscriber removed",
		"session_id", sessionID,
		"sub_id", subID)
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sessionID, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, sessionID)
	}

	b.logger.Debug("feed closed")
}
