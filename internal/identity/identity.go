// ABOUTME: Device-local identity store for the chat widget's session and contact details
// ABOUTME: Persists session id, visitor name and email in a key/value file with atomic saves

package identity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Well-known keys in the identity file. They mirror the keys the chat widget
// has always used, so an existing identity survives upgrades.
const (
	keySessionID    = "chat_session_id"
	keyVisitorName  = "visitor_name"
	keyVisitorEmail = "visitor_email"
)

// Session is a visitor's device-local chat identity. Once a session id is
// minted it is never regenerated while the identity file exists.
type Session struct {
	SessionID    string
	VisitorName  string
	VisitorEmail string
}

// Identified reports whether the visitor has supplied both name and email.
func (s *Session) Identified() bool {
	return s.VisitorName != "" && s.VisitorEmail != ""
}

// Store reads and writes the identity file. The file never expires and is
// never deleted by this code; it belongs to the visitor's device.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store backed by the given file path. Parent directories
// are created on first save, not here.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		logger: slog.Default().With("component", "identity"),
	}
}

// Load returns the previously saved session, or (nil, false) if no identity
// has been saved or the file cannot be read. Read failures are treated as
// "no prior session", never surfaced as errors.
func (s *Store) Load() (*Session, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("identity file unreadable, treating as absent", "path", s.path, "error", err)
		}
		return nil, false
	}

	var kv map[string]string
	if err := json.Unmarshal(data, &kv); err != nil {
		s.logger.Warn("identity file corrupt, treating as absent", "path", s.path, "error", err)
		return nil, false
	}

	sess := &Session{
		SessionID:    kv[keySessionID],
		VisitorName:  kv[keyVisitorName],
		VisitorEmail: kv[keyVisitorEmail],
	}
	if sess.SessionID == "" {
		return nil, false
	}
	return sess, true
}

// Save persists all identity fields atomically: the file is written to a
// temp path and renamed, so a concurrent Load observes either the old or the
// new complete session, never a session id without its name and email.
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating identity directory: %w", err)
	}

	kv := map[string]string{
		keySessionID:    sess.SessionID,
		keyVisitorName:  sess.VisitorName,
		keyVisitorEmail: sess.VisitorEmail,
	}
	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing identity file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing identity file: %w", err)
	}
	return nil
}

// MintSessionID generates a new session identifier: a millisecond timestamp
// plus a 9-character random base36 suffix. Collision avoidance only needs to
// hold per device, not globally.
func MintSessionID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return "session_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + string(suffix)
}

// IsSessionID reports whether a string looks like an id minted by
// MintSessionID. Used by the boundary to reject garbage session ids early.
func IsSessionID(id string) bool {
	if !strings.HasPrefix(id, "session_") {
		return false
	}
	rest := strings.TrimPrefix(id, "session_")
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	if _, err := strconv.ParseInt(parts[0], 10, 64); err != nil {
		return false
	}
	return true
}
