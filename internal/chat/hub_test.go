// ABOUTME: Tests for the chat hub's controller lifecycle
// ABOUTME: Covers session minting, adoption of presented ids, and stale eviction

package chat

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yosraHouas/YH-Portfolio/internal/feed"
	"github.com/yosraHouas/YH-Portfolio/internal/identity"
)

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()
	identityDir := t.TempDir()
	fd := feed.NewBroadcaster(nil)
	t.Cleanup(fd.Close)
	h := NewHub(identityDir, newFakeMessageStore(), fd, nil)
	t.Cleanup(h.Close)
	return h, identityDir
}

func TestHub_EmptySessionIDMintsFresh(t *testing.T) {
	h, identityDir := newTestHub(t)

	c := h.GetOrCreate("")
	sess := c.Session()
	assert.True(t, identity.IsSessionID(sess.SessionID))

	// The identity file was seeded with the minted id
	_, err := os.Stat(filepath.Join(identityDir, sess.SessionID+".json"))
	assert.NoError(t, err)
}

func TestHub_SameSessionIDReturnsSameController(t *testing.T) {
	h, _ := newTestHub(t)

	c1 := h.GetOrCreate("session_1700000000000_abc123def")
	c2 := h.GetOrCreate("session_1700000000000_abc123def")
	assert.Same(t, c1, c2)
}

func TestHub_PresentedUnknownIDAdoptedAsIs(t *testing.T) {
	h, _ := newTestHub(t)

	// The widget remembered a session this server never saw
	c := h.GetOrCreate("session_1690000000000_zzz999aaa")
	assert.Equal(t, "session_1690000000000_zzz999aaa", c.Session().SessionID)
}

func TestHub_Get(t *testing.T) {
	h, _ := newTestHub(t)

	_, ok := h.Get("session_1700000000000_abc123def")
	assert.False(t, ok)

	created := h.GetOrCreate("session_1700000000000_abc123def")
	got, ok := h.Get("session_1700000000000_abc123def")
	require.True(t, ok)
	assert.Same(t, created, got)
}

func TestHub_EvictStaleClosesController(t *testing.T) {
	h, _ := newTestHub(t)

	c := h.GetOrCreate("session_1700000000000_abc123def")
	c.Open()
	require.NoError(t, c.SubmitIdentity(context.Background(), "Ada", "ada@example.com"))

	// Age the entry past the threshold and run eviction directly
	h.mu.Lock()
	h.controllers["session_1700000000000_abc123def"].lastUsed = time.Now().Add(-time.Hour)
	h.mu.Unlock()
	h.evictStale()

	_, ok := h.Get("session_1700000000000_abc123def")
	assert.False(t, ok, "stale session should be evicted")

	_, err := c.Send(context.Background(), "too late")
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestHub_IdentitySurvivesEviction(t *testing.T) {
	h, _ := newTestHub(t)

	c := h.GetOrCreate("session_1700000000000_abc123def")
	c.Open()
	require.NoError(t, c.SubmitIdentity(context.Background(), "Ada", "ada@example.com"))

	h.mu.Lock()
	h.controllers["session_1700000000000_abc123def"].lastUsed = time.Now().Add(-time.Hour)
	h.mu.Unlock()
	h.evictStale()

	// A returning visitor resumes straight to active with identity intact
	revived := h.GetOrCreate("session_1700000000000_abc123def")
	assert.Equal(t, StateActive, revived.State())
	assert.Equal(t, "Ada", revived.Session().VisitorName)
}
