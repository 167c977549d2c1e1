package model

import "time"

// Draft — черновик. Content дублирует ContentHTML для обратной совместимости
// со старыми данными без rich-текста.
type Draft struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"contentHtml"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
