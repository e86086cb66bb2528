// Package server provides the HTTP API for the portfolio backend.
//
// # Endpoints
//
// Public:
//
//   - POST /api/contact: contact form submission with email notification
//   - POST /api/views: page view tracking (fire-and-forget, always 202)
//   - POST /api/chat/messages: send a chat message
//   - GET  /api/chat/messages: conversation history for a session
//   - GET  /api/chat/stream: live message feed over SSE
//
// Admin:
//
//   - GET  /api/admin/dashboard: analytics dashboard payload
//   - GET  /api/admin/chat-messages: all chat messages, newest first
//   - GET  /api/admin/contact-messages: all contact submissions, newest first
//   - POST /api/admin/chat-messages/{id}/read: mark a chat message read
//   - POST /api/admin/contact-messages/{id}/replied: mark a submission replied
//
// Health:
//
//   - GET /health: liveness
//   - GET /health/ready: readiness (database reachable)
//
// # CORS
//
// All routes pass through a permissive CORS middleware; OPTIONS preflights
// are answered directly with 200.
//
// # Streaming
//
// The SSE endpoint emits a "connected" event, then one "message" event per
// chat message, with comment keepalives at the configured heartbeat interval.
// The subscription is bound to the request context and released on
// disconnect.
package server
