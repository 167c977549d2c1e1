// Package id генерирует уникальные непрозрачные идентификаторы сущностей
// с префиксом вида сущности: chat_…, msg_…, n_…, s_…, draft_….
package id

import "github.com/google/uuid"

// New возвращает новый идентификатор с указанным префиксом вида.
func New(kind string) string {
	return kind + "_" + uuid.NewString()
}
