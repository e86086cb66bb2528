// ABOUTME: Read-side analytics projections for the operator dashboard
// ABOUTME: Computes total/unique/today view counts and per-page bar widths from raw events

package analytics

import (
	"strings"
	"time"

	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

// TotalStats are the dashboard's headline numbers, recomputed from the full
// raw page-view set on every load. Never persisted.
type TotalStats struct {
	TotalViews          int `json:"total_views"`
	TotalUniqueVisitors int `json:"total_unique_visitors"`
	TodayViews          int `json:"today_views"`
}

// Totals computes the headline stats from the raw event set.
//
// Unique visitors is the cardinality of distinct visitor IPs. The IP is a
// deliberately coarse dedup key (shared IPs undercount, dynamic IPs
// overcount); dashboards consuming the number expect exactly this
// definition, so it must not be "improved".
//
// Today's views counts events whose stored timestamp starts with now's UTC
// calendar date, the same prefix match the dashboard has always done. An
// event at 00:00:00 UTC today counts; one at 23:59:59 UTC yesterday does not.
func Totals(views []*store.PageView, now time.Time) TotalStats {
	today := now.UTC().Format("2006-01-02")

	seen := make(map[string]struct{})
	todayViews := 0
	for _, v := range views {
		seen[v.VisitorIP] = struct{}{}
		if strings.HasPrefix(v.CreatedAt.UTC().Format(time.RFC3339Nano), today) {
			todayViews++
		}
	}

	return TotalStats{
		TotalViews:          len(views),
		TotalUniqueVisitors: len(seen),
		TodayViews:          todayViews,
	}
}

// BarWidth returns the display width percentage for one page's bar:
// the page's share of the current maximum view count, clamped to 100.
// Returns 0 when maxViews is 0, so an empty page list renders flat bars
// instead of dividing by zero.
func BarWidth(viewCount, maxViews int) float64 {
	if maxViews <= 0 {
		return 0
	}
	w := float64(viewCount) / float64(maxViews) * 100
	if w > 100 {
		return 100
	}
	return w
}

// MaxViewCount returns the largest view count across the page stats, 0 for
// an empty list.
func MaxViewCount(stats []*store.PageStat) int {
	max := 0
	for _, s := range stats {
		if s.ViewCount > max {
			max = s.ViewCount
		}
	}
	return max
}

// BarWidths computes the display width for every page stat in order.
func BarWidths(stats []*store.PageStat) []float64 {
	max := MaxViewCount(stats)
	widths := make([]float64, len(stats))
	for i, s := range stats {
		widths[i] = BarWidth(s.ViewCount, max)
	}
	return widths
}
