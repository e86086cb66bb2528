// Package analytics computes visit statistics from raw page views.
//
// # Overview
//
// Totals derives headline numbers from raw views:
//
//   - Total views: count of all recorded views
//   - Unique visitors: cardinality of distinct visitor IPs
//   - Today's views: views whose creation date matches today in UTC
//
// BarWidth maps a view count to a 0-100 percentage of the busiest day, used
// by the dashboard's bar chart.
//
// # Dashboard
//
// Load assembles the full admin dashboard payload: headline totals, the last
// 30 daily stat rows, and per-page stats with precomputed bar widths. Each
// source is read independently; a failing read logs and leaves that section
// empty rather than failing the whole dashboard.
package analytics
