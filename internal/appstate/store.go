package appstate

import (
	"context"
	"sync"
	"time"

	"github.com/workdesk/internal/logger"
	"github.com/workdesk/internal/storage"
)

const persistKey = "app_state"

// LayoutApplier применяет направление раскладки при смене языка. Вызов
// best-effort: ошибка логируется и не влияет на состояние.
type LayoutApplier func(lang string, rtl bool) error

// Store — единственный владелец снапшота состояния. Создаётся при старте,
// все мутации идут через типизированные методы-действия; каждый метод
// возвращает новый снапшот. После гидратации каждое изменение session
// персистится (без UI), смена языка применяет раскладку.
type Store struct {
	mu          sync.Mutex
	state       State
	store       *storage.Store
	applyLayout LayoutApplier
	now         func() time.Time
}

func NewStore(kv *storage.Store, applyLayout LayoutApplier) *Store {
	if applyLayout == nil {
		applyLayout = func(lang string, rtl bool) error {
			logger.Debugf("appstate: layout lang=%s rtl=%v", lang, rtl)
			return nil
		}
	}
	return &Store{state: initialState(), store: kv, applyLayout: applyLayout, now: time.Now}
}

// State возвращает текущий снапшот (копию по значению).
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Hydrate читает сохранённый снапшот и вливает его session в состояние.
// Отсутствующая или битая запись — гидратация пустым снапшотом.
func (s *Store) Hydrate(ctx context.Context) State {
	var persisted persistedState
	ok, err := s.store.GetJSON(ctx, persistKey, &persisted)
	if err != nil {
		logger.Errorf("appstate: гидратация: %v", err)
		ok = false
	}
	a := Action{Kind: ActionHydrate}
	if ok {
		a.Snapshot = &persisted
	}
	return s.dispatch(ctx, a)
}

func (s *Store) SetRole(ctx context.Context, role Role) State {
	return s.dispatch(ctx, Action{Kind: ActionSetRole, Role: role})
}

func (s *Store) SetPro(ctx context.Context, isPro bool) State {
	return s.dispatch(ctx, Action{Kind: ActionSetPro, IsPro: isPro})
}

func (s *Store) SetProfile(ctx context.Context, p ProfileUpdate) State {
	return s.dispatch(ctx, Action{Kind: ActionSetProfile, Profile: p})
}

func (s *Store) SetEmail(ctx context.Context, email string) State {
	return s.dispatch(ctx, Action{Kind: ActionSetEmail, Email: email})
}

func (s *Store) SetLanguage(ctx context.Context, language string) State {
	return s.dispatch(ctx, Action{Kind: ActionSetLanguage, Language: language})
}

func (s *Store) Toast(ctx context.Context, message string) State {
	return s.dispatch(ctx, Action{Kind: ActionToast, Toast: &Toast{Message: message, At: s.now()}})
}

// dispatch применяет действие и выполняет производные эффекты.
// Эффекты (персист session, раскладка) — best-effort, ошибки проглатываются
// с логом и не откатывают состояние.
func (s *Store) dispatch(ctx context.Context, a Action) State {
	s.mu.Lock()
	prev := s.state
	next := reduce(prev, a)
	s.state = next
	s.mu.Unlock()

	if next.Hydrated && (next.Session != prev.Session || !prev.Hydrated) {
		if err := s.store.SetJSON(ctx, persistKey, persistedState{Session: next.Session}); err != nil {
			logger.Errorf("appstate: персист session: %v", err)
		}
	}
	if next.Hydrated && (next.Session.Language != prev.Session.Language || !prev.Hydrated) {
		lang := next.Session.Language
		if err := s.applyLayout(lang, IsRTL(lang)); err != nil {
			logger.Errorf("appstate: применение раскладки %s: %v", lang, err)
		}
	}
	return next
}
