// ABOUTME: Dashboard loader issuing the three independent analytics reads
// ABOUTME: Treats each failed read as empty so one bad panel never blanks the others

package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/yosraHouas/YH-Portfolio/internal/store"
)

// dailyStatLimit is how many daily rollups the dashboard shows.
const dailyStatLimit = 30

// Dashboard is everything the operator dashboard's stats panels need.
type Dashboard struct {
	TotalStats TotalStats         `json:"total_stats"`
	DailyStats []*store.DailyStat `json:"daily_stats"`
	PageStats  []*store.PageStat  `json:"page_stats"`
	BarWidths  []float64          `json:"bar_widths"`
}

// StatsReader is the slice of the store the loader needs.
type StatsReader interface {
	AllPageViews(ctx context.Context) ([]*store.PageView, error)
	DailyStats(ctx context.Context, limit int) ([]*store.DailyStat, error)
	PageStats(ctx context.Context) ([]*store.PageStat, error)
}

// Load performs the three dashboard reads. The reads are independent: a
// failure in any one is logged and contributes empty data, and the other
// panels still populate. Totals are recomputed from the raw event set here
// and are not reconciled against the precomputed daily rollups; the two can
// legitimately disagree until the rollup job has run for today.
func Load(ctx context.Context, r StatsReader, now time.Time, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "analytics")

	views, err := r.AllPageViews(ctx)
	if err != nil {
		logger.Error("loading page views, rendering totals as empty", "error", err)
		views = nil
	}

	daily, err := r.DailyStats(ctx, dailyStatLimit)
	if err != nil {
		logger.Error("loading daily stats, rendering panel as empty", "error", err)
		daily = nil
	}

	pages, err := r.PageStats(ctx)
	if err != nil {
		logger.Error("loading page stats, rendering panel as empty", "error", err)
		pages = nil
	}

	return &Dashboard{
		TotalStats: Totals(views, now),
		DailyStats: daily,
		PageStats:  pages,
		BarWidths:  BarWidths(pages),
	}
}
