package model

import "time"

type ChatType string

const (
	ChatTypeDM    ChatType = "dm"
	ChatTypeGroup ChatType = "group"
)

// Chat — чат со встроенной историей сообщений. Хранится целиком одной записью
// в списке chats (read-modify-write всего списка, отдельной таблицы сообщений нет).
type Chat struct {
	ID       string    `json:"id"`
	Type     ChatType  `json:"type"`
	Title    string    `json:"title"`
	Members  []string  `json:"members"`
	Messages []Message `json:"messages"`
}

// HasMember сообщает, входит ли пользователь в состав чата.
func (c *Chat) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// IsDMBetween — true для DM с ровно этой (неупорядоченной) парой участников.
func (c *Chat) IsDMBetween(a, b string) bool {
	return c.Type == ChatTypeDM && len(c.Members) == 2 && c.HasMember(a) && c.HasMember(b)
}

// Message — сообщение чата. После создания неизменяемо, кроме записей ReadBy:
// они переключаются только false→true, обратно — никогда.
type Message struct {
	ID        string          `json:"id"`
	ChatID    string          `json:"chatId"`
	SenderID  string          `json:"senderId"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"createdAt"`
	ReadBy    map[string]bool `json:"readBy"`
}

// ReadByAll — прочитано ли сообщение всеми участниками, кроме отправителя.
// Двигает индикатор "отправлено/прочитано" у последнего сообщения отправителя.
func (m *Message) ReadByAll(members []string) bool {
	for _, u := range members {
		if u == m.SenderID {
			continue
		}
		if !m.ReadBy[u] {
			return false
		}
	}
	return true
}
