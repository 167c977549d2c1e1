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

const draftsKey = "drafts"

// DraftRepository владеет списком черновиков: upsert по id либо создание
// нового, удаление по id. Экспорт и редактор — внешние потребители, здесь
// только контракт хранения.
type DraftRepository struct {
	store *storage.Store
	now   func() time.Time
}

func NewDraftRepository(store *storage.Store) *DraftRepository {
	return &DraftRepository{store: store, now: time.Now}
}

// List возвращает все черновики; пустое хранилище — пустой срез.
func (r *DraftRepository) List(ctx context.Context) ([]model.Draft, error) {
	defer logger.DeferLogDuration("draft.List", time.Now())()
	var drafts []model.Draft
	ok, err := r.store.GetJSON(ctx, draftsKey, &drafts)
	if err != nil {
		return nil, fmt.Errorf("draftRepo.List: %w", err)
	}
	if !ok || drafts == nil {
		return []model.Draft{}, nil
	}
	return drafts, nil
}

// Upsert сохраняет черновик с plain-текстом: content дублируется в
// contentHtml для старых клиентов. Пустой draftID — создание.
func (r *DraftRepository) Upsert(ctx context.Context, draftID, title, content string) (*model.Draft, error) {
	defer logger.DeferLogDuration("draft.Upsert", time.Now())()
	return r.save(ctx, draftID, title, content, content)
}

// UpsertRich сохраняет черновик с rich-HTML содержимым.
func (r *DraftRepository) UpsertRich(ctx context.Context, draftID, title, contentHTML string) (*model.Draft, error) {
	defer logger.DeferLogDuration("draft.UpsertRich", time.Now())()
	return r.save(ctx, draftID, title, "", contentHTML)
}

func (r *DraftRepository) save(ctx context.Context, draftID, title, content, contentHTML string) (*model.Draft, error) {
	drafts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if draftID == "" {
		draftID = id.New("draft")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	next := model.Draft{
		ID:          draftID,
		Title:       title,
		Content:     content,
		ContentHTML: contentHTML,
		UpdatedAt:   r.now(),
	}

	replaced := false
	for i := range drafts {
		if drafts[i].ID == draftID {
			drafts[i] = next
			replaced = true
			break
		}
	}
	if !replaced {
		drafts = append([]model.Draft{next}, drafts...)
	}
	if err := r.store.SetJSON(ctx, draftsKey, drafts); err != nil {
		return nil, fmt.Errorf("draftRepo.save: %w", err)
	}
	return &next, nil
}

// Delete удаляет черновик по id; отсутствующий id — no-op.
func (r *DraftRepository) Delete(ctx context.Context, draftID string) error {
	defer logger.DeferLogDuration("draft.Delete", time.Now())()
	drafts, err := r.List(ctx)
	if err != nil {
		return err
	}
	kept := drafts[:0]
	for _, d := range drafts {
		if d.ID != draftID {
			kept = append(kept, d)
		}
	}
	if err := r.store.SetJSON(ctx, draftsKey, kept); err != nil {
		return fmt.Errorf("draftRepo.Delete: %w", err)
	}
	return nil
}
