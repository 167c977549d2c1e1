package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/workdesk/internal/id"
	"github.com/workdesk/internal/logger"
	"github.com/workdesk/internal/model"
	"github.com/workdesk/internal/storage"
)

const chatsKey = "chats"

// MessageNotifier создаёт уведомление получателю при fan-out сообщения.
// Интерфейс разрывает цикл chat → notification репозиториев.
type MessageNotifier interface {
	AddMessageNotification(ctx context.Context, in model.NotificationInput) (*model.Notification, error)
}

// FanoutResult — исход создания уведомления для одного получателя.
// Ошибки fan-out не валят отправку сообщения, а возвращаются списком,
// чтобы вызывающий мог их залогировать.
type FanoutResult struct {
	UserID string
	Err    error
}

// ChatRepository владеет списком чатов: сидирование демо-данных, дедупликация
// DM, добавление сообщений и отметки прочтения. Каждая операция — полный
// read-modify-write записи chats.
type ChatRepository struct {
	store    *storage.Store
	notifier MessageNotifier // nil — fan-out отключён
	now      func() time.Time
}

func NewChatRepository(store *storage.Store, notifier MessageNotifier) *ChatRepository {
	return &ChatRepository{store: store, notifier: notifier, now: time.Now}
}

// seedChats — два детерминированных демо-чата для первого запуска.
func (r *ChatRepository) seedChats() []model.Chat {
	now := r.now()
	return []model.Chat{
		{
			ID:      "chat_demo_1",
			Type:    model.ChatTypeDM,
			Title:   "Support",
			Members: []string{"admin", "customer"},
			Messages: []model.Message{{
				ID:        "m1",
				ChatID:    "chat_demo_1",
				SenderID:  "customer",
				Text:      "Hi! I need help with my order.",
				CreatedAt: now,
				ReadBy:    map[string]bool{"admin": false, "customer": true},
			}},
		},
		{
			ID:      "chat_demo_2",
			Type:    model.ChatTypeGroup,
			Title:   "Team",
			Members: []string{"admin", "staff"},
			Messages: []model.Message{{
				ID:        "m2",
				ChatID:    "chat_demo_2",
				SenderID:  "admin",
				Text:      "Welcome — status updates here.",
				CreatedAt: now,
				ReadBy:    map[string]bool{"admin": true, "staff": false},
			}},
		},
	}
}

// ListChats возвращает все чаты; пустое хранилище сидируется демо-чатами.
func (r *ChatRepository) ListChats(ctx context.Context) ([]model.Chat, error) {
	defer logger.DeferLogDuration("chat.ListChats", time.Now())()
	var chats []model.Chat
	ok, err := r.store.GetJSON(ctx, chatsKey, &chats)
	if err != nil {
		return nil, fmt.Errorf("chatRepo.ListChats: %w", err)
	}
	if !ok || len(chats) == 0 {
		chats = r.seedChats()
		if err := r.store.SetJSON(ctx, chatsKey, chats); err != nil {
			return nil, fmt.Errorf("chatRepo.ListChats seed: %w", err)
		}
	}
	return chats, nil
}

// GetChat возвращает чат по id или ErrNotFound.
func (r *ChatRepository) GetChat(ctx context.Context, chatID string) (*model.Chat, error) {
	defer logger.DeferLogDuration("chat.GetChat", time.Now())()
	chats, err := r.ListChats(ctx)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].ID == chatID {
			return &chats[i], nil
		}
	}
	return nil, ErrNotFound
}

// CreateDMChat возвращает существующий DM этой (неупорядоченной) пары или
// создаёт новый. Идемпотентна: повторный вызов с теми же участниками в любом
// порядке даёт тот же чат.
func (r *ChatRepository) CreateDMChat(ctx context.Context, memberA, memberB, title string) (*model.Chat, error) {
	defer logger.DeferLogDuration("chat.CreateDMChat", time.Now())()
	chats, err := r.ListChats(ctx)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].IsDMBetween(memberA, memberB) {
			return &chats[i], nil
		}
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = "Direct message"
	}
	next := model.Chat{
		ID:       id.New("chat"),
		Type:     model.ChatTypeDM,
		Title:    title,
		Members:  []string{memberA, memberB},
		Messages: []model.Message{},
	}
	if err := r.store.SetJSON(ctx, chatsKey, append([]model.Chat{next}, chats...)); err != nil {
		return nil, fmt.Errorf("chatRepo.CreateDMChat: %w", err)
	}
	return &next, nil
}

// CreateGroupChat создаёт групповой чат; участники дедуплицируются с
// сохранением порядка, пустые значения отбрасываются.
func (r *ChatRepository) CreateGroupChat(ctx context.Context, title string, members []string) (*model.Chat, error) {
	defer logger.DeferLogDuration("chat.CreateGroupChat", time.Now())()
	chats, err := r.ListChats(ctx)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = "New group"
	}
	seen := make(map[string]bool, len(members))
	uniq := make([]string, 0, len(members))
	for _, m := range members {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		uniq = append(uniq, m)
	}
	next := model.Chat{
		ID:       id.New("chat"),
		Type:     model.ChatTypeGroup,
		Title:    title,
		Members:  uniq,
		Messages: []model.Message{},
	}
	if err := r.store.SetJSON(ctx, chatsKey, append([]model.Chat{next}, chats...)); err != nil {
		return nil, fmt.Errorf("chatRepo.CreateGroupChat: %w", err)
	}
	return &next, nil
}

// SendMessage добавляет сообщение в чат: ReadBy заполняется по всем текущим
// участникам, true только у отправителя. После записи выполняется fan-out
// уведомлений остальным участникам; каждый получатель независим, его ошибка
// попадает в результат, но не отменяет уже записанное сообщение.
func (r *ChatRepository) SendMessage(ctx context.Context, chatID, senderID, text, fromName string) (*model.Message, []FanoutResult, error) {
	defer logger.DeferLogDuration("chat.SendMessage", time.Now())()
	chats, err := r.ListChats(ctx)
	if err != nil {
		return nil, nil, err
	}
	idx := -1
	for i := range chats {
		if chats[i].ID == chatID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("chatRepo.SendMessage %s: %w", chatID, ErrNotFound)
	}
	chat := &chats[idx]

	readBy := make(map[string]bool, len(chat.Members))
	for _, m := range chat.Members {
		readBy[m] = m == senderID
	}
	msg := model.Message{
		ID:        id.New("msg"),
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: r.now(),
		ReadBy:    readBy,
	}
	chat.Messages = append(chat.Messages, msg)
	if err := r.store.SetJSON(ctx, chatsKey, chats); err != nil {
		return nil, nil, fmt.Errorf("chatRepo.SendMessage: %w", err)
	}

	if fromName == "" {
		fromName = senderID
	}
	var fanout []FanoutResult
	if r.notifier != nil {
		for _, member := range chat.Members {
			if member == senderID {
				continue
			}
			_, err := r.notifier.AddMessageNotification(ctx, model.NotificationInput{
				ToUserID:    member,
				FromUserID:  senderID,
				FromName:    fromName,
				ChatID:      chatID,
				MessageID:   msg.ID,
				PreviewText: text,
			})
			fanout = append(fanout, FanoutResult{UserID: member, Err: err})
		}
	}
	return &msg, fanout, nil
}

// MarkChatRead проставляет readBy[userID]=true всем сообщениям чата.
// Идемпотентна; чата нет — no-op.
func (r *ChatRepository) MarkChatRead(ctx context.Context, chatID, userID string) error {
	defer logger.DeferLogDuration("chat.MarkChatRead", time.Now())()
	chats, err := r.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("chatRepo.MarkChatRead: %w", err)
	}
	idx := -1
	for i := range chats {
		if chats[i].ID == chatID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	for i := range chats[idx].Messages {
		if chats[idx].Messages[i].ReadBy == nil {
			chats[idx].Messages[i].ReadBy = make(map[string]bool, 1)
		}
		chats[idx].Messages[i].ReadBy[userID] = true
	}
	if err := r.store.SetJSON(ctx, chatsKey, chats); err != nil {
		return fmt.Errorf("chatRepo.MarkChatRead: %w", err)
	}
	return nil
}

// SetChatMembers полностью заменяет состав чата. readBy старых сообщений с
// новым составом не сверяется: у добавленных участников нет исторических
// записей прочтения (известный пробел, политика намеренно не выбрана).
func (r *ChatRepository) SetChatMembers(ctx context.Context, chatID string, members []string) error {
	defer logger.DeferLogDuration("chat.SetChatMembers", time.Now())()
	chats, err := r.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("chatRepo.SetChatMembers: %w", err)
	}
	changed := false
	for i := range chats {
		if chats[i].ID == chatID {
			chats[i].Members = members
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	if err := r.store.SetJSON(ctx, chatsKey, chats); err != nil {
		return fmt.Errorf("chatRepo.SetChatMembers: %w", err)
	}
	return nil
}
