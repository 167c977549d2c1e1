package model

type Metric string

const (
	MetricRequests      Metric = "requests"
	MetricMessages      Metric = "messages"
	MetricNotifications Metric = "notifications"
)

// MetricSeriesConfig — настроенная пользователем серия графика.
// Порядок в списке = порядок добавления, редактируется по id.
type MetricSeriesConfig struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Metric  Metric `json:"metric"`
	Color   string `json:"color"`
	Enabled bool   `json:"enabled"`
}

// MetricData — все счётчики одного пользователя: метрика → день (YYYY-MM-DD,
// локальное время) → значение. Хранится одной записью metrics:data:{userId},
// инкременты только увеличивают значения.
type MetricData map[Metric]map[string]int
