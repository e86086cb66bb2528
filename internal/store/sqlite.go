// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides chat/contact/page-view persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is RFC 3339 with a fixed-width nanosecond fraction. Fixed width
// keeps lexicographic order of the stored TEXT equal to chronological order,
// which the ORDER BY created_at queries rely on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db        *sql.DB
	logger    *slog.Logger
	publisher ChatPublisher
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// SetPublisher registers a publisher that receives every committed chat
// message insert. Pass nil to disable publishing.
func (s *SQLiteStore) SetPublisher(p ChatPublisher) {
	s.publisher = p
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			visitor_name TEXT NOT NULL,
			visitor_email TEXT NOT NULL,
			message TEXT NOT NULL,
			is_from_admin INTEGER NOT NULL DEFAULT 0,
			read INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at);

		CREATE TABLE IF NOT EXISTS contact_messages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			subject TEXT NOT NULL,
			message TEXT NOT NULL,
			replied INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS page_views (
			id TEXT PRIMARY KEY,
			page_path TEXT NOT NULL,
			referrer TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			visitor_ip TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_page_views_created ON page_views(created_at);

		CREATE TABLE IF NOT EXISTS daily_stats (
			date TEXT PRIMARY KEY,
			total_views INTEGER NOT NULL DEFAULT 0,
			unique_visitors INTEGER NOT NULL DEFAULT 0,
			pages_visited INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS page_stats (
			page_path TEXT PRIMARY KEY,
			view_count INTEGER NOT NULL DEFAULT 0,
			unique_visitors INTEGER NOT NULL DEFAULT 0,
			last_viewed TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// InsertChatMessage persists a chat message and returns the stored row.
// The id and created_at are always assigned server-side; values supplied by
// the caller for those fields are ignored. The committed row is published to
// the registered ChatPublisher, if any.
func (s *SQLiteStore) InsertChatMessage(ctx context.Context, msg *ChatMessage) (*ChatMessage, error) {
	stored := *msg
	stored.ID = uuid.New().String()
	// Nanosecond precision so rapid sends within the same second keep their
	// send order under created_at sorting.
	stored.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, visitor_name, visitor_email, message, is_from_admin, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID,
		stored.SessionID,
		stored.VisitorName,
		stored.VisitorEmail,
		stored.Message,
		boolToInt(stored.IsFromAdmin),
		boolToInt(stored.Read),
		stored.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting chat message: %w", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(stored.SessionID, &stored)
	}

	return &stored, nil
}

// ChatMessagesBySession returns all messages for a session ordered by
// created_at ascending, the display order of the chat widget.
func (s *SQLiteStore) ChatMessagesBySession(ctx context.Context, sessionID string) ([]*ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, visitor_name, visitor_email, message, is_from_admin, read, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	return scanChatMessages(rows)
}

// AllChatMessages returns every chat message ordered newest first, the order
// the operator dashboard lists them in.
func (s *SQLiteStore) AllChatMessages(ctx context.Context) ([]*ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, visitor_name, visitor_email, message, is_from_admin, read, created_at
		 FROM chat_messages ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	return scanChatMessages(rows)
}

// MarkChatMessageRead sets read=true on the message with the given id.
// Marking an already-read message is a no-op that still succeeds.
// Returns ErrNotFound if no message with the id exists.
func (s *SQLiteStore) MarkChatMessageRead(ctx context.Context, id string) error {
	return s.markFlag(ctx, "chat_messages", "read", id)
}

// InsertContactMessage persists a contact-form submission and returns the
// stored row with its server-assigned id and created_at.
func (s *SQLiteStore) InsertContactMessage(ctx context.Context, msg *ContactMessage) (*ContactMessage, error) {
	stored := *msg
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, subject, message, replied, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stored.ID,
		stored.Name,
		stored.Email,
		stored.Subject,
		stored.Message,
		boolToInt(stored.Replied),
		stored.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting contact message: %w", err)
	}

	return &stored, nil
}

// AllContactMessages returns every contact submission ordered newest first.
func (s *SQLiteStore) AllContactMessages(ctx context.Context) ([]*ContactMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, subject, message, replied, created_at
		 FROM contact_messages ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying contact messages: %w", err)
	}
	defer rows.Close()

	var msgs []*ContactMessage
	for rows.Next() {
		var msg ContactMessage
		var replied int
		var createdAt string
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject, &msg.Message, &replied, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning contact message: %w", err)
		}
		msg.Replied = replied != 0
		msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// MarkContactMessageReplied sets replied=true on the submission with the
// given id. Same contract as MarkChatMessageRead.
func (s *SQLiteStore) MarkContactMessageReplied(ctx context.Context, id string) error {
	return s.markFlag(ctx, "contact_messages", "replied", id)
}

// markFlag performs a one-way false->true single-field update by id.
func (s *SQLiteStore) markFlag(ctx context.Context, table, column, id string) error {
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s = 1 WHERE id = ?", table, column), id,
	)
	if err != nil {
		return fmt.Errorf("updating %s.%s: %w", table, column, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertPageView persists one raw page-view event and returns the stored row.
func (s *SQLiteStore) InsertPageView(ctx context.Context, view *PageView) (*PageView, error) {
	stored := *view
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO page_views (id, page_path, referrer, user_agent, visitor_ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		stored.ID,
		stored.PagePath,
		stored.Referrer,
		stored.UserAgent,
		stored.VisitorIP,
		stored.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting page view: %w", err)
	}

	return &stored, nil
}

// AllPageViews returns the full raw event set in insertion order. The
// analytics aggregator consumes this wholesale on each dashboard load.
func (s *SQLiteStore) AllPageViews(ctx context.Context) ([]*PageView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, page_path, referrer, user_agent, visitor_ip, created_at
		 FROM page_views ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying page views: %w", err)
	}
	defer rows.Close()

	var views []*PageView
	for rows.Next() {
		var v PageView
		var createdAt string
		if err := rows.Scan(&v.ID, &v.PagePath, &v.Referrer, &v.UserAgent, &v.VisitorIP, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning page view: %w", err)
		}
		v.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}

// DailyStats returns up to limit daily rollups, most recent date first.
func (s *SQLiteStore) DailyStats(ctx context.Context, limit int) ([]*DailyStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, total_views, unique_visitors, pages_visited
		 FROM daily_stats ORDER BY date DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying daily stats: %w", err)
	}
	defer rows.Close()

	var stats []*DailyStat
	for rows.Next() {
		var stat DailyStat
		if err := rows.Scan(&stat.Date, &stat.TotalViews, &stat.UniqueVisitors, &stat.PagesVisited); err != nil {
			return nil, fmt.Errorf("scanning daily stat: %w", err)
		}
		stats = append(stats, &stat)
	}
	return stats, rows.Err()
}

// PageStats returns per-path rollups ordered by view count descending.
func (s *SQLiteStore) PageStats(ctx context.Context) ([]*PageStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page_path, view_count, unique_visitors, last_viewed
		 FROM page_stats ORDER BY view_count DESC, page_path ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying page stats: %w", err)
	}
	defer rows.Close()

	var stats []*PageStat
	for rows.Next() {
		var stat PageStat
		var lastViewed string
		if err := rows.Scan(&stat.PagePath, &stat.ViewCount, &stat.UniqueVisitors, &lastViewed); err != nil {
			return nil, fmt.Errorf("scanning page stat: %w", err)
		}
		stat.LastViewed, err = time.Parse(time.RFC3339Nano, lastViewed)
		if err != nil {
			return nil, fmt.Errorf("parsing last_viewed: %w", err)
		}
		stats = append(stats, &stat)
	}
	return stats, rows.Err()
}

// UpsertDailyStat inserts or replaces the rollup row for a date.
func (s *SQLiteStore) UpsertDailyStat(ctx context.Context, stat *DailyStat) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_stats (date, total_views, unique_visitors, pages_visited)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			total_views = excluded.total_views,
			unique_visitors = excluded.unique_visitors,
			pages_visited = excluded.pages_visited`,
		stat.Date, stat.TotalViews, stat.UniqueVisitors, stat.PagesVisited,
	)
	if err != nil {
		return fmt.Errorf("upserting daily stat: %w", err)
	}
	return nil
}

// UpsertPageStat inserts or replaces the rollup row for a page path.
func (s *SQLiteStore) UpsertPageStat(ctx context.Context, stat *PageStat) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO page_stats (page_path, view_count, unique_visitors, last_viewed)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(page_path) DO UPDATE SET
			view_count = excluded.view_count,
			unique_visitors = excluded.unique_visitors,
			last_viewed = excluded.last_viewed`,
		stat.PagePath, stat.ViewCount, stat.UniqueVisitors, stat.LastViewed.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upserting page stat: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanChatMessages(rows *sql.Rows) ([]*ChatMessage, error) {
	var msgs []*ChatMessage
	for rows.Next() {
		var msg ChatMessage
		var isFromAdmin, read int
		var createdAt string
		err := rows.Scan(&msg.ID, &msg.SessionID, &msg.VisitorName, &msg.VisitorEmail,
			&msg.Message, &isFromAdmin, &read, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		msg.IsFromAdmin = isFromAdmin != 0
		msg.Read = read != 0
		msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
