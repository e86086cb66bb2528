// ABOUTME: Tests for Broadcaster fan-out pub/sub of chat messages
// ABOUTME: Covers subscribe, publish, unsubscribe, context cancellation, slow consumers

package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

func makeMessage(id, sessionID string) *store.ChatMessage {
	return &store.ChatMessage{
		ID:          id,
		SessionID:   sessionID,
		VisitorName: "test-visitor",
		Message:     "hello from " + id,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestBroadcaster_SingleSubscriberReceivesMessage(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx := context.Background()

	ch, _ := b.Subscribe(ctx, "session-1")

	b.Publish("session-1", makeMessage("msg-1", "session-1"))

	select {
	case received := <-ch:
		assert.Equal(t, "msg-1", received.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestBroadcaster_MultipleSubscribersReceiveSameMessage(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx := context.Background()

	ch1, _ := b.Subscribe(ctx, "session-1")
	ch2, _ := b.Subscribe(ctx, "session-1")
	ch3, _ := b.Subscribe(ctx, "session-1")

	b.Publish("session-1", makeMessage("msg-2", "session-1"))

	for i, ch := range []<-chan *store.ChatMessage{ch1, ch2, ch3} {
		select {
		case received := <-ch:
			assert.Equal(t, "msg-2", received.ID, "subscriber %d got wrong message", i)
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestBroadcaster_DifferentSessionsAreIsolated(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx := context.Background()

	ch1, _ := b.Subscribe(ctx, "session-1")
	ch2, _ := b.Subscribe(ctx, "session-2")

	b.Publish("session-1", makeMessage("msg-3", "session-1"))

	// ch1 should receive the message
	select {
	case received := <-ch1:
		assert.Equal(t, "msg-3", received.ID)
	case <-time.After(time.Second):
		t.Fatal("subscriber for session-1 timed out")
	}

	// ch2 should NOT receive anything
	select {
	case <-ch2:
		t.Fatal("subscriber for session-2 should not receive messages for session-1")
	case <-time.After(100 * time.Millisecond):
		// Expected: no message
	}
}

func TestBroadcaster_SlowConsumerDoesNotBlockPublisher(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx := context.Background()

	// Subscribe but never read from ch1 (slow consumer)
	_, _ = b.Subscribe(ctx, "session-1")
	ch2, _ := b.Subscribe(ctx, "session-1")

	// Publish more messages than the buffer size to overflow ch1
	for i := 0; i < 100; i++ {
		b.Publish("session-1", makeMessage("msg-overflow-"+string(rune('0'+i%10)), "session-1"))
	}

	// ch2 should still receive messages (publisher wasn't blocked)
	receivedCount := 0
	for {
		select {
		case <-ch2:
			receivedCount++
		case <-time.After(200 * time.Millisecond):
			goto done
		}
	}
done:
	assert.Greater(t, receivedCount, 0, "fast consumer should receive at least some messages")
}

func TestBroadcaster_ContextCancellationCleansUp(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, subID := b.Subscribe(ctx, "session-1")

	// Verify subscription exists
	b.mu.RLock()
	_, exists := b.subscribers["session-1"][subID]
	b.mu.RUnlock()
	assert.True(t, exists, "subscription should exist before cancel")

	// Cancel the context
	cancel()

	// Give cleanup goroutine time to run
	time.Sleep(50 * time.Millisecond)

	// Subscription should be cleaned up
	b.mu.RLock()
	subs, sessExists := b.subscribers["session-1"]
	if sessExists {
		_, subExists := subs[subID]
		assert.False(t, subExists, "subscription should be removed after context cancel")
	}
	b.mu.RUnlock()

	// Channel should be closed
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after context cancel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}

func TestBroadcaster_ManualUnsubscribe(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx := context.Background()

	ch, subID := b.Subscribe(ctx, "session-1")

	b.Unsubscribe("session-1", subID)

	// Channel should be closed
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after unsubscribe")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}

	// Publishing should not panic
	b.Publish("session-1", makeMessage("msg-after-unsub", "session-1"))
}

func TestBroadcaster_SubscriberCount(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx := context.Background()

	assert.Equal(t, 0, b.SubscriberCount("session-1"))

	_, subID := b.Subscribe(ctx, "session-1")
	_, _ = b.Subscribe(ctx, "session-1")
	assert.Equal(t, 2, b.SubscriberCount("session-1"))
	assert.Equal(t, 0, b.SubscriberCount("session-2"))

	b.Unsubscribe("session-1", subID)
	assert.Equal(t, 1, b.SubscriberCount("session-1"))
}

func TestBroadcaster_CloseClosesAllSubscriptions(t *testing.T) {
	b := NewBroadcaster(nil)

	ctx1 := context.Background()
	ctx2 := context.Background()

	ch1, _ := b.Subscribe(ctx1, "session-1")
	ch2, _ := b.Subscribe(ctx2, "session-2")

	b.Close()

	// Both channels should be closed
	for i, ch := range []<-chan *store.ChatMessage{ch1, ch2} {
		select {
		case _, ok := <-ch:
			assert.False(t, ok, "channel %d should be closed after Close()", i)
		case <-time.After(time.Second):
			t.Fatalf("channel %d not closed after Close()", i)
		}
	}
}
