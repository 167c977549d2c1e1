package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/workdesk/internal/id"
	"github.com/workdesk/internal/logger"
	"github.com/workdesk/internal/model"
	"github.com/workdesk/internal/storage"
)

// MetricsRepository владеет дневными счётчиками и конфигурацией серий.
// Все метрики одного пользователя лежат одной записью metrics:data:{userId};
// инкремент — read-modify-write этой записи целиком.
type MetricsRepository struct {
	store *storage.Store
	now   func() time.Time
}

func NewMetricsRepository(store *storage.Store) *MetricsRepository {
	return &MetricsRepository{store: store, now: time.Now}
}

func metricsConfigKey(userID string) string {
	return storage.UserKey("metrics:config", userID)
}

func metricsDataKey(userID string) string {
	return storage.UserKey("metrics:data", userID)
}

// dayKey — ключ календарного дня в локальном времени, YYYY-MM-DD.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SeriesConfig возвращает сохранённую конфигурацию серий; при первом
// обращении сидирует две серии по умолчанию (Requests, Messages) с
// фиксированными цветами и сгенерированными id.
func (r *MetricsRepository) SeriesConfig(ctx context.Context, userID string) ([]model.MetricSeriesConfig, error) {
	defer logger.DeferLogDuration("metrics.SeriesConfig", time.Now())()
	var cfg []model.MetricSeriesConfig
	ok, err := r.store.GetJSON(ctx, metricsConfigKey(userID), &cfg)
	if err != nil {
		return nil, fmt.Errorf("metricsRepo.SeriesConfig: %w", err)
	}
	if ok && len(cfg) > 0 {
		return cfg, nil
	}
	defaults := []model.MetricSeriesConfig{
		{ID: id.New("s"), Name: "Requests", Metric: model.MetricRequests, Color: "#2D6CDF", Enabled: true},
		{ID: id.New("s"), Name: "Messages", Metric: model.MetricMessages, Color: "#0F8E73", Enabled: true},
	}
	if err := r.store.SetJSON(ctx, metricsConfigKey(userID), defaults); err != nil {
		return nil, fmt.Errorf("metricsRepo.SeriesConfig seed: %w", err)
	}
	return defaults, nil
}

// SaveSeriesConfig полностью заменяет конфигурацию серий пользователя.
func (r *MetricsRepository) SaveSeriesConfig(ctx context.Context, userID string, cfg []model.MetricSeriesConfig) error {
	defer logger.DeferLogDuration("metrics.SaveSeriesConfig", time.Now())()
	if err := r.store.SetJSON(ctx, metricsConfigKey(userID), cfg); err != nil {
		return fmt.Errorf("metricsRepo.SaveSeriesConfig: %w", err)
	}
	return nil
}

// Bump увеличивает счётчик метрики в дневном бакете на by. Нулевое when —
// текущий момент. Счётчики только растут.
func (r *MetricsRepository) Bump(ctx context.Context, userID string, metric model.Metric, when time.Time, by int) error {
	defer logger.DeferLogDuration("metrics.Bump", time.Now())()
	if when.IsZero() {
		when = r.now()
	}
	dk := dayKey(when)

	data := model.MetricData{}
	if _, err := r.store.GetJSON(ctx, metricsDataKey(userID), &data); err != nil {
		return fmt.Errorf("metricsRepo.Bump: %w", err)
	}
	bucket := data[metric]
	if bucket == nil {
		bucket = make(map[string]int, 1)
	}
	bucket[dk] += by
	data[metric] = bucket

	if err := r.store.SetJSON(ctx, metricsDataKey(userID), data); err != nil {
		return fmt.Errorf("metricsRepo.Bump: %w", err)
	}
	return nil
}

// Series возвращает ровно days значений метрики, от старых к новым, по одному
// на календарный день, сегодняшний включительно; отсутствующий бакет — 0.
// Чистая функция от сохранённых данных и текущей даты.
func (r *MetricsRepository) Series(ctx context.Context, userID string, metric model.Metric, days int) ([]int, error) {
	defer logger.DeferLogDuration("metrics.Series", time.Now())()
	if days <= 0 {
		days = 14
	}
	data := model.MetricData{}
	if _, err := r.store.GetJSON(ctx, metricsDataKey(userID), &data); err != nil {
		return nil, fmt.Errorf("metricsRepo.Series: %w", err)
	}
	bucket := data[metric]

	out := make([]int, 0, days)
	today := r.now()
	for i := days - 1; i >= 0; i-- {
		out = append(out, bucket[dayKey(today.AddDate(0, 0, -i))])
	}
	return out, nil
}
