// Package chat provides session-scoped chat conversation management.
//
// # Overview
//
// The chat package sits between the HTTP handlers and the store, owning the
// lifecycle of a visitor conversation: identity capture, message history,
// optimistic local echo, and the live feed subscription that keeps the
// in-memory mirror current.
//
// # Controller
//
// A Controller manages one visitor session:
//
//	ctrl, err := chat.NewController(sessionID, ids, store, feed, logger)
//
// Conversation state moves through three phases:
//
//   - StateAnonymous: widget closed, nothing loaded
//   - StateAwaitingIdentity: widget open, name and email not yet captured
//   - StateActive: identity saved, history loaded, live feed attached
//
// A session with a previously saved identity skips straight to StateActive.
//
// Key operations:
//
//   - Open(): Anonymous -> AwaitingIdentity
//   - SubmitIdentity(ctx, name, email): capture identity and activate
//   - Send(ctx, text): persist a visitor message and echo it locally
//   - Messages(): snapshot of the conversation mirror
//
// # Message Mirror
//
// The controller keeps an in-memory mirror of the conversation, merged from
// three sources: the history load at activation, the optimistic echo of each
// send, and messages arriving on the feed subscription. A seen-set keyed by
// message ID guarantees each message appears exactly once, and the mirror is
// kept sorted by creation time.
//
// At most one feed subscription exists per controller. Re-activation cancels
// the previous subscription before opening a new one.
//
// # Hub
//
// The Hub maps session IDs to controllers for the HTTP layer:
//
//	hub := chat.NewHub(identityDir, store, feed, logger)
//	ctrl, err := hub.GetOrCreate(sessionID)
//
// Controllers idle for 30 minutes are closed and evicted by a background
// cleanup loop.
package chat
