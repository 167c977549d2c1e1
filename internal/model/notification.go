package model

import "time"

type NotificationType string

const (
	NotificationTypeMessage NotificationType = "message"
)

// Notification — элемент ленты уведомлений получателя. Создаётся по одному
// на каждое сообщение для каждого участника, кроме отправителя (fan-out).
// Мутируется только переключением Read false→true.
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	CreatedAt   time.Time        `json:"createdAt"`
	Read        bool             `json:"read"`
	FromUserID  string           `json:"fromUserId"`
	FromName    string           `json:"fromName"`
	ChatID      string           `json:"chatId"`
	MessageID   string           `json:"messageId"`
	PreviewText string           `json:"previewText"`
}

// NotificationInput — параметры fan-out при отправке сообщения.
type NotificationInput struct {
	ToUserID    string `json:"to_user_id"`
	FromUserID  string `json:"from_user_id"`
	FromName    string `json:"from_name"`
	ChatID      string `json:"chat_id"`
	MessageID   string `json:"message_id"`
	PreviewText string `json:"preview_text"`
}
