// Package config handles configuration loading for portfolio-server.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from PORTFOLIO_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/portfolio/server.yaml
//  3. ~/.config/portfolio/server.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	notify:
//	  api_key: "${RESEND_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	server:
//	  heartbeat_interval: "30s"
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  heartbeat_interval: "30s"  # SSE keepalive cadence
//
// Database:
//
//	database:
//	  path: "/var/lib/portfolio/portfolio.db"
//
// Identity storage:
//
//	identity:
//	  dir: "/var/lib/portfolio/identities"
//
// Email notifications:
//
//	notify:
//	  api_url: ""                       # defaults to the Resend API
//	  api_key: "${RESEND_API_KEY}"      # empty disables email
//	  from: "Portfolio <noreply@example.com>"
//	  to: "owner@example.com"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - server.http_addr, database.path, identity.dir are set
//   - notify.from and notify.to are set when an api_key is configured
//   - Duration format validity
package config
