// Package notify sends contact form submissions to the site owner by email
// via the Resend HTTP API. An empty API key disables sending entirely.
package notify
