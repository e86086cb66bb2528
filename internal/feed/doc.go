// Package feed provides in-memory fan-out of chat messages to subscribers.
//
// # Overview
//
// The Broadcaster delivers each published chat message to every subscriber of
// that message's session. It backs both the per-session conversation mirrors
// and the SSE streaming endpoint.
//
// # Subscriptions
//
//	ch, id := broadcaster.Subscribe(ctx, sessionID)
//
// Each subscription gets a buffered channel. Subscriptions are released when
// the context is cancelled or Unsubscribe is called; the channel is closed on
// release.
//
// # Delivery Semantics
//
// Publish never blocks: a subscriber whose buffer is full has the message
// dropped, with a warning logged. Slow consumers therefore cannot stall the
// store's insert path. Subscribers that need a complete record read it back
// from the store.
package feed
