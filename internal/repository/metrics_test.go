package repository

import (
	"context"
	"testing"
	"time"

	"github.com/workdesk/internal/model"
	"github.com/workdesk/internal/storage"
	"github.com/workdesk/internal/storage/memory"
)

func newMetricsRepo(t *testing.T, now time.Time) *MetricsRepository {
	t.Helper()
	r := NewMetricsRepository(storage.NewStore(memory.New()))
	r.now = func() time.Time { return now }
	return r
}

func TestSeriesConfigSeedsDefaultsOnce(t *testing.T) {
	r := newMetricsRepo(t, testNow)
	ctx := context.Background()

	cfg, err := r.SeriesConfig(ctx, "admin")
	if err != nil {
		t.Fatalf("SeriesConfig: %v", err)
	}
	if len(cfg) != 2 {
		t.Fatalf("expected 2 default series, got %d", len(cfg))
	}
	if cfg[0].Name != "Requests" || cfg[0].Metric != model.MetricRequests || cfg[0].Color != "#2D6CDF" || !cfg[0].Enabled {
		t.Fatalf("unexpected first default: %+v", cfg[0])
	}
	if cfg[1].Name != "Messages" || cfg[1].Metric != model.MetricMessages || cfg[1].Color != "#0F8E73" {
		t.Fatalf("unexpected second default: %+v", cfg[1])
	}
	if cfg[0].ID == "" || cfg[0].ID == cfg[1].ID {
		t.Fatalf("defaults must carry distinct generated ids: %q, %q", cfg[0].ID, cfg[1].ID)
	}

	again, err := r.SeriesConfig(ctx, "admin")
	if err != nil {
		t.Fatalf("SeriesConfig again: %v", err)
	}
	if again[0].ID != cfg[0].ID || again[1].ID != cfg[1].ID {
		t.Fatalf("second read must return the persisted seed, not a new one")
	}
}

func TestSaveSeriesConfigReplaces(t *testing.T) {
	r := newMetricsRepo(t, testNow)
	ctx := context.Background()

	next := []model.MetricSeriesConfig{
		{ID: "s_1", Name: "Alerts", Metric: model.MetricNotifications, Color: "#AA0000", Enabled: false},
	}
	if err := r.SaveSeriesConfig(ctx, "admin", next); err != nil {
		t.Fatalf("SaveSeriesConfig: %v", err)
	}
	got, err := r.SeriesConfig(ctx, "admin")
	if err != nil {
		t.Fatalf("SeriesConfig: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s_1" || got[0].Name != "Alerts" {
		t.Fatalf("expected replaced config, got %+v", got)
	}
}

func TestSeriesWindowSumsAllBumps(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	r := newMetricsRepo(t, now)
	ctx := context.Background()

	// Сегодня, вчера (дважды), 6 дней назад, и за пределами окна в 7 дней.
	bumps := []struct {
		when time.Time
		by   int
	}{
		{now, 1},
		{now.AddDate(0, 0, -1), 2},
		{now.AddDate(0, 0, -1), 3},
		{now.AddDate(0, 0, -6), 4},
		{now.AddDate(0, 0, -7), 100},
	}
	for _, b := range bumps {
		if err := r.Bump(ctx, "admin", model.MetricRequests, b.when, b.by); err != nil {
			t.Fatalf("Bump: %v", err)
		}
	}

	series, err := r.Series(ctx, "admin", model.MetricRequests, 7)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(series) != 7 {
		t.Fatalf("expected exactly 7 values, got %d", len(series))
	}
	// Старые первыми: [-6 .. сегодня]
	want := []int{4, 0, 0, 0, 0, 5, 1}
	for i := range want {
		if series[i] != want[i] {
			t.Fatalf("series[%d] = %d, want %d (full: %v)", i, series[i], want[i], series)
		}
	}
	total := 0
	for _, v := range series {
		total += v
	}
	if total != 10 {
		t.Fatalf("window must sum to bumps inside it (10), got %d", total)
	}
}

func TestBumpZeroTimeUsesNow(t *testing.T) {
	r := newMetricsRepo(t, testNow)
	ctx := context.Background()
	if err := r.Bump(ctx, "customer", model.MetricMessages, time.Time{}, 1); err != nil {
		t.Fatalf("Bump: %v", err)
	}
	series, err := r.Series(ctx, "customer", model.MetricMessages, 1)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if series[0] != 1 {
		t.Fatalf("today's bucket must be 1, got %v", series)
	}
}

func TestSeriesEmptyStateIsZeros(t *testing.T) {
	r := newMetricsRepo(t, testNow)
	series, err := r.Series(context.Background(), "nobody", model.MetricNotifications, 14)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(series) != 14 {
		t.Fatalf("expected 14 values, got %d", len(series))
	}
	for i, v := range series {
		if v != 0 {
			t.Fatalf("series[%d] must be 0, got %d", i, v)
		}
	}
}

func TestSeriesDefaultDays(t *testing.T) {
	r := newMetricsRepo(t, testNow)
	series, err := r.Series(context.Background(), "nobody", model.MetricRequests, 0)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(series) != 14 {
		t.Fatalf("non-positive days must default to 14, got %d", len(series))
	}
}
