// ABOUTME: Batch job recomputing daily_stats and page_stats from raw page views
// ABOUTME: Idempotent per run; the dashboard reads its results but never triggers it

package rollup

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

// Store is the slice of the store the rollup job needs.
type Store interface {
	AllPageViews(ctx context.Context) ([]*store.PageView, error)
	UpsertDailyStat(ctx context.Context, stat *store.DailyStat) error
	UpsertPageStat(ctx context.Context, stat *store.PageStat) error
}

// Run recomputes every daily and per-page rollup from the raw event set and
// upserts the results. Running twice over the same events writes identical
// rows. The dashboard's freshly computed totals and these rollups may
// disagree for today until the next run; that is expected.
func Run(ctx context.Context, s Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "rollup")

	views, err := s.AllPageViews(ctx)
	if err != nil {
		return fmt.Errorf("loading page views: %w", err)
	}

	daily, pages := aggregate(views)

	for _, stat := range daily {
		if err := s.UpsertDailyStat(ctx, stat); err != nil {
			return fmt.Errorf("upserting daily stat %s: %w", stat.Date, err)
		}
	}
	for _, stat := range pages {
		if err := s.UpsertPageStat(ctx, stat); err != nil {
			return fmt.Errorf("upserting page stat %s: %w", stat.PagePath, err)
		}
	}

	logger.Info("rollup complete",
		"views", len(views),
		"days", len(daily),
		"pages", len(pages))
	return nil
}

// aggregate folds the raw events into per-day and per-path rollups.
func aggregate(views []*store.PageView) ([]*store.DailyStat, []*store.PageStat) {
	type daySet struct {
		views int
		ips   map[string]struct{}
		paths map[string]struct{}
	}
	type pageSet struct {
		views      int
		ips        map[string]struct{}
		lastViewed time.Time
	}

	days := make(map[string]*daySet)
	pages := make(map[string]*pageSet)

	for _, v := range views {
		date := v.CreatedAt.UTC().Format("2006-01-02")
		d, ok := days[date]
		if !ok {
			d = &daySet{ips: make(map[string]struct{}), paths: make(map[string]struct{})}
			days[date] = d
		}
		d.views++
		d.ips[v.VisitorIP] = struct{}{}
		d.paths[v.PagePath] = struct{}{}

		p, ok := pages[v.PagePath]
		if !ok {
			p = &pageSet{ips: make(map[string]struct{})}
			pages[v.PagePath] = p
		}
		p.views++
		p.ips[v.VisitorIP] = struct{}{}
		if v.CreatedAt.After(p.lastViewed) {
			p.lastViewed = v.CreatedAt
		}
	}

	dailyStats := make([]*store.DailyStat, 0, len(days))
	for date, d := range days {
		dailyStats = append(dailyStats, &store.DailyStat{
			Date:           date,
			TotalViews:     d.views,
			UniqueVisitors: len(d.ips),
			PagesVisited:   len(d.paths),
		})
	}
	sort.Slice(dailyStats, func(i, j int) bool { return dailyStats[i].Date < dailyStats[j].Date })

	pageStats := make([]*store.PageStat, 0, len(pages))
	for path, p := range pages {
		pageStats = append(pageStats, &store.PageStat{
			PagePath:       path,
			ViewCount:      p.views,
			UniqueVisitors: len(p.ips),
			LastViewed:     p.lastViewed,
		})
	}
	sort.Slice(pageStats, func(i, j int) bool { return pageStats[i].PagePath < pageStats[j].PagePath })

	return dailyStats, pageStats
}
