// Package store provides persistent storage for the portfolio backend using SQLite.
//
// # Architecture
//
// The Store interface covers all persistence concerns:
//
//   - Chat messages: visitor/admin conversation history with read flags
//   - Contact messages: contact form submissions with replied flags
//   - Page views: raw visit events used for analytics
//   - Daily and per-page stats: pre-aggregated rollups
//
// SQLiteStore is the single implementation. Consumers depend on narrower
// interfaces declared at the point of use (chat.MessageStore,
// track.ViewStore, rollup.Store) so tests can substitute small fakes.
//
// # Data Models
//
//   - ChatMessage: One chat line, visitor or admin authored
//   - ContactMessage: One contact form submission
//   - PageView: One tracked page load with visitor IP, referrer, user agent
//   - DailyStat: Per-day view count, unique visitors, unique pages
//   - PageStat: Per-path view count, unique visitors, last viewed time
//
// # Realtime Publishing
//
// A ChatPublisher can be attached with SetPublisher. Every chat message is
// published after its transaction commits, so subscribers only ever see
// durable rows.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Timestamps are stored as RFC 3339 text with nanosecond precision so that
// messages sent within the same second keep their order.
//
// # Error Handling
//
// ErrNotFound is returned when a flag update targets a missing row. All
// methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore(":memory:") for tests with real SQLite.
package store
