// Package rollup rebuilds the daily and per-page stats tables from raw page
// views. Running it repeatedly is safe: aggregates are upserted in full.
package rollup
