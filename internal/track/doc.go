// Package track records page view events for analytics. Recording is
// best-effort: failures are logged and never surfaced to the visitor.
package track
