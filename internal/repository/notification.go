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

// MetricSink инкрементирует счётчик метрики. Реализуется MetricsRepository;
// ошибки инкремента никогда не блокируют создание уведомления.
type MetricSink interface {
	Bump(ctx context.Context, userID string, metric model.Metric, when time.Time, by int) error
}

// EventSink получает событие о новом уведомлении (доставка в подключённый UI).
// nil-получатель допустим.
type EventSink interface {
	NotificationAdded(userID string, n *model.Notification)
}

// NotificationRepository владеет лентами уведомлений: ключ
// notifications:{userId}, новые элементы добавляются в начало.
type NotificationRepository struct {
	store   *storage.Store
	metrics MetricSink
	events  EventSink
	now     func() time.Time
}

func NewNotificationRepository(store *storage.Store, metrics MetricSink, events EventSink) *NotificationRepository {
	return &NotificationRepository{store: store, metrics: metrics, events: events, now: time.Now}
}

func notificationsKey(userID string) string {
	return storage.UserKey("notifications", userID)
}

// List возвращает ленту получателя, новые первыми. Пустая лента — пустой срез.
func (r *NotificationRepository) List(ctx context.Context, userID string) ([]model.Notification, error) {
	defer logger.DeferLogDuration("notification.List", time.Now())()
	var items []model.Notification
	ok, err := r.store.GetJSON(ctx, notificationsKey(userID), &items)
	if err != nil {
		return nil, fmt.Errorf("notificationRepo.List: %w", err)
	}
	if !ok || items == nil {
		return []model.Notification{}, nil
	}
	return items, nil
}

// AddMessageNotification создаёт непрочитанное уведомление и добавляет его в
// начало ленты получателя. После записи инкрементируются три счётчика
// получателя (notifications, messages, requests); каждый инкремент независим
// и best-effort: его ошибка логируется и не трогает созданное уведомление.
func (r *NotificationRepository) AddMessageNotification(ctx context.Context, in model.NotificationInput) (*model.Notification, error) {
	defer logger.DeferLogDuration("notification.AddMessageNotification", time.Now())()
	fromName := in.FromName
	if fromName == "" {
		fromName = in.FromUserID
	}
	next := model.Notification{
		ID:          id.New("n"),
		Type:        model.NotificationTypeMessage,
		CreatedAt:   r.now(),
		Read:        false,
		FromUserID:  in.FromUserID,
		FromName:    fromName,
		ChatID:      in.ChatID,
		MessageID:   in.MessageID,
		PreviewText: in.PreviewText,
	}

	list, err := r.List(ctx, in.ToUserID)
	if err != nil {
		return nil, err
	}
	updated := append([]model.Notification{next}, list...)
	if err := r.store.SetJSON(ctx, notificationsKey(in.ToUserID), updated); err != nil {
		return nil, fmt.Errorf("notificationRepo.AddMessageNotification: %w", err)
	}

	if r.metrics != nil {
		for _, m := range []model.Metric{model.MetricNotifications, model.MetricMessages, model.MetricRequests} {
			if err := r.metrics.Bump(ctx, in.ToUserID, m, time.Time{}, 1); err != nil {
				logger.Errorf("notification: bump %s для %s: %v", m, in.ToUserID, err)
			}
		}
	}
	if r.events != nil {
		r.events.NotificationAdded(in.ToUserID, &next)
	}
	return &next, nil
}

// MarkRead переключает Read=true у уведомления с данным id. Уже прочитанное
// или отсутствующее уведомление — no-op без ошибки.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	defer logger.DeferLogDuration("notification.MarkRead", time.Now())()
	list, err := r.List(ctx, userID)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == notificationID {
			list[i].Read = true
		}
	}
	if err := r.store.SetJSON(ctx, notificationsKey(userID), list); err != nil {
		return fmt.Errorf("notificationRepo.MarkRead: %w", err)
	}
	return nil
}
