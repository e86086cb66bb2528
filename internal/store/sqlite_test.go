// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers chat/contact/page-view persistence, ordering, flags, and stat rollups

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	// Verify the database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	// Verify the database file was created in the nested directory
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestInsertChatMessage_AssignsServerFields(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	before := time.Now().UTC()
	stored, err := store.InsertChatMessage(ctx, &ChatMessage{
		ID:          "client-supplied-id",
		SessionID:   "session_1700000000000_abc123def",
		VisitorName: "Ada",
		Message:     "hello",
		CreatedAt:   time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("InsertChatMessage failed: %v", err)
	}

	if stored.ID == "client-supplied-id" || stored.ID == "" {
		t.Errorf("expected server-assigned id, got %q", stored.ID)
	}
	if stored.CreatedAt.Before(before) {
		t.Errorf("expected server-assigned created_at, got %v", stored.CreatedAt)
	}
}

func TestChatMessagesBySession_OrderAndIsolation(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.InsertChatMessage(ctx, &ChatMessage{
			SessionID:   "session_1700000000000_abc123def",
			VisitorName: "Ada",
			Message:     fmt.Sprintf("message %d", i),
		})
		if err != nil {
			t.Fatalf("InsertChatMessage failed: %v", err)
		}
	}
	if _, err := store.InsertChatMessage(ctx, &ChatMessage{
		SessionID:   "session_1700000000001_other0000",
		VisitorName: "Bob",
		Message:     "unrelated",
	}); err != nil {
		t.Fatalf("InsertChatMessage failed: %v", err)
	}

	msgs, err := store.ChatMessagesBySession(ctx, "session_1700000000000_abc123def")
	if err != nil {
		t.Fatalf("ChatMessagesBySession failed: %v", err)
	}

	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, msg := range msgs {
		if want := fmt.Sprintf("message %d", i); msg.Message != want {
			t.Errorf("message %d out of order: got %q, want %q", i, msg.Message, want)
		}
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Errorf("messages not in created_at order at index %d", i)
		}
	}
}

func TestChatMessagesBySession_RapidSendsKeepOrder(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	// Inserts land within the same second; nanosecond timestamps must still
	// preserve send order.
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := store.InsertChatMessage(ctx, &ChatMessage{
			SessionID: "session_1700000000000_abc123def",
			Message:   fmt.Sprintf("rapid %d", i),
		})
		if err != nil {
			t.Fatalf("InsertChatMessage failed: %v", err)
		}
	}

	msgs, err := store.ChatMessagesBySession(ctx, "session_1700000000000_abc123def")
	if err != nil {
		t.Fatalf("ChatMessagesBySession failed: %v", err)
	}
	for i, msg := range msgs {
		if want := fmt.Sprintf("rapid %d", i); msg.Message != want {
			t.Errorf("position %d: got %q, want %q", i, msg.Message, want)
		}
	}
}

func TestInsertChatMessage_PublishesCommittedRow(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	pub := &capturePublisher{}
	store.SetPublisher(pub)

	ctx := context.Background()
	stored, err := store.InsertChatMessage(ctx, &ChatMessage{
		SessionID: "session_1700000000000_abc123def",
		Message:   "published?",
	})
	if err != nil {
		t.Fatalf("InsertChatMessage failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(pub.published))
	}
	if pub.published[0].ID != stored.ID {
		t.Errorf("published id %q does not match stored id %q", pub.published[0].ID, stored.ID)
	}
	if pub.sessionIDs[0] != "session_1700000000000_abc123def" {
		t.Errorf("published under wrong session id: %q", pub.sessionIDs[0])
	}
}

func TestAllChatMessages_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.InsertChatMessage(ctx, &ChatMessage{
			SessionID: "session_1700000000000_abc123def",
			Message:   fmt.Sprintf("message %d", i),
		})
		if err != nil {
			t.Fatalf("InsertChatMessage failed: %v", err)
		}
	}

	msgs, err := store.AllChatMessages(ctx)
	if err != nil {
		t.Fatalf("AllChatMessages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Message != "message 2" || msgs[2].Message != "message 0" {
		t.Errorf("expected newest first, got %q .. %q", msgs[0].Message, msgs[2].Message)
	}
}

func TestMarkChatMessageRead(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	stored, err := store.InsertChatMessage(ctx, &ChatMessage{
		SessionID: "session_1700000000000_abc123def",
		Message:   "unread",
	})
	if err != nil {
		t.Fatalf("InsertChatMessage failed: %v", err)
	}
	if stored.Read {
		t.Error("new message should start unread")
	}

	if err := store.MarkChatMessageRead(ctx, stored.ID); err != nil {
		t.Fatalf("MarkChatMessageRead failed: %v", err)
	}

	// Marking again is a no-op that still succeeds
	if err := store.MarkChatMessageRead(ctx, stored.ID); err != nil {
		t.Fatalf("repeat MarkChatMessageRead failed: %v", err)
	}

	msgs, err := store.ChatMessagesBySession(ctx, stored.SessionID)
	if err != nil {
		t.Fatalf("ChatMessagesBySession failed: %v", err)
	}
	if !msgs[0].Read {
		t.Error("message should be read after MarkChatMessageRead")
	}
}

func TestMarkChatMessageRead_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	err := store.MarkChatMessageRead(context.Background(), "nonexistent")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestContactMessages(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	first, err := store.InsertContactMessage(ctx, &ContactMessage{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Hello",
		Message: "First",
	})
	if err != nil {
		t.Fatalf("InsertContactMessage failed: %v", err)
	}
	if _, err := store.InsertContactMessage(ctx, &ContactMessage{
		Name:    "Bob",
		Email:   "bob@example.com",
		Subject: "Hi",
		Message: "Second",
	}); err != nil {
		t.Fatalf("InsertContactMessage failed: %v", err)
	}

	msgs, err := store.AllContactMessages(ctx)
	if err != nil {
		t.Fatalf("AllContactMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Name != "Bob" {
		t.Errorf("expected newest first, got %q", msgs[0].Name)
	}

	if err := store.MarkContactMessageReplied(ctx, first.ID); err != nil {
		t.Fatalf("MarkContactMessageReplied failed: %v", err)
	}

	msgs, err = store.AllContactMessages(ctx)
	if err != nil {
		t.Fatalf("AllContactMessages failed: %v", err)
	}
	if !msgs[1].Replied {
		t.Error("first message should be replied")
	}
	if msgs[0].Replied {
		t.Error("second message should not be replied")
	}
}

func TestMarkContactMessageReplied_NotFound(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	err := store.MarkContactMessageReplied(context.Background(), "nonexistent")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPageViews(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	stored, err := store.InsertPageView(ctx, &PageView{
		PagePath:  "/projects",
		Referrer:  "https://news.example.com",
		UserAgent: "Mozilla/5.0",
		VisitorIP: "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("InsertPageView failed: %v", err)
	}
	if stored.ID == "" {
		t.Error("expected server-assigned id")
	}

	views, err := store.AllPageViews(ctx)
	if err != nil {
		t.Fatalf("AllPageViews failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	got := views[0]
	if got.PagePath != "/projects" {
		t.Errorf("PagePath mismatch: got %q", got.PagePath)
	}
	if got.VisitorIP != "203.0.113.7" {
		t.Errorf("VisitorIP mismatch: got %q", got.VisitorIP)
	}
	if got.Referrer != "https://news.example.com" {
		t.Errorf("Referrer mismatch: got %q", got.Referrer)
	}
}

func TestDailyStats_UpsertAndLimit(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		stat := &DailyStat{
			Date:           fmt.Sprintf("2026-08-%02d", i+1),
			TotalViews:     i + 1,
			UniqueVisitors: 1,
			PagesVisited:   1,
		}
		if err := store.UpsertDailyStat(ctx, stat); err != nil {
			t.Fatalf("UpsertDailyStat failed: %v", err)
		}
	}

	// Upsert over an existing date replaces its values
	if err := store.UpsertDailyStat(ctx, &DailyStat{
		Date:           "2026-08-03",
		TotalViews:     99,
		UniqueVisitors: 7,
		PagesVisited:   3,
	}); err != nil {
		t.Fatalf("UpsertDailyStat failed: %v", err)
	}

	stats, err := store.DailyStats(ctx, 3)
	if err != nil {
		t.Fatalf("DailyStats failed: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 stats, got %d", len(stats))
	}
	if stats[0].Date != "2026-08-05" {
		t.Errorf("expected newest date first, got %q", stats[0].Date)
	}
	if stats[2].Date != "2026-08-03" || stats[2].TotalViews != 99 {
		t.Errorf("upsert did not replace values: %+v", stats[2])
	}
}

func TestPageStats_Upsert(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	if err := store.UpsertPageStat(ctx, &PageStat{
		PagePath:       "/",
		ViewCount:      10,
		UniqueVisitors: 4,
		LastViewed:     now,
	}); err != nil {
		t.Fatalf("UpsertPageStat failed: %v", err)
	}
	if err := store.UpsertPageStat(ctx, &PageStat{
		PagePath:       "/projects",
		ViewCount:      3,
		UniqueVisitors: 2,
		LastViewed:     now,
	}); err != nil {
		t.Fatalf("UpsertPageStat failed: %v", err)
	}
	if err := store.UpsertPageStat(ctx, &PageStat{
		PagePath:       "/",
		ViewCount:      12,
		UniqueVisitors: 5,
		LastViewed:     now,
	}); err != nil {
		t.Fatalf("UpsertPageStat failed: %v", err)
	}

	stats, err := store.PageStats(ctx)
	if err != nil {
		t.Fatalf("PageStats failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats, got %d", len(stats))
	}
	// Ordered by view count descending
	if stats[0].PagePath != "/" || stats[0].ViewCount != 12 {
		t.Errorf("upsert did not replace values: %+v", stats[0])
	}
}

// capturePublisher records every published message for assertions.
type capturePublisher struct {
	sessionIDs []string
	published  []*ChatMessage
}

func (p *capturePublisher) Publish(sessionID string, msg *ChatMessage) {
	p.sessionIDs = append(p.sessionIDs, sessionID)
	p.published = append(p.published, msg)
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	return store
}
