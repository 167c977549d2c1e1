// Package storage — key-value хранилище приложения. Бэкенд (postgres, redis,
// file, memory) выбирается один раз при старте и передаётся репозиториям как
// готовая возможность; никакого выбора бэкенда на каждый вызов.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/workdesk/internal/logger"
)

// Namespace — фиксированный префикс всех ключей приложения, чтобы не
// пересекаться с чужими данными в том же хранилище.
const Namespace = "sxr2:"

// Client — низкоуровневый доступ к хранилищу.
//
// Контракт намеренно без транзакций: репозитории читают коллекцию целиком,
// меняют её в памяти и пишут обратно. Атомарности нет, при двух конкурентных
// писателях выигрывает последний. Это допустимо только потому, что хранилище
// локальное и активный пользователь один; для multi-writer окружений
// реализация НЕ безопасна.
type Client interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Store оборачивает Client: добавляет namespace-префикс и JSON-кодирование.
// Строковые значения проходят без изменений, структуры ходят через JSON.
type Store struct {
	cli    Client
	prefix string
}

func NewStore(cli Client) *Store {
	return &Store{cli: cli, prefix: Namespace}
}

// NewStoreWithPrefix — для нестандартного namespace (например, в тестах).
func NewStoreWithPrefix(cli Client, prefix string) *Store {
	return &Store{cli: cli, prefix: prefix}
}

func (s *Store) key(k string) string { return s.prefix + k }

// GetJSON читает значение по ключу и декодирует его в out.
// Отсутствующий ключ — (false, nil). Битый JSON не считается ошибкой:
// значение логируется и трактуется как отсутствующее (мягкая политика
// чтения устаревших/сырых записей).
func (s *Store) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := s.cli.Get(ctx, s.key(key))
	if err != nil {
		return false, fmt.Errorf("storage.GetJSON %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.Errorf("storage: ключ %s содержит не-JSON значение (%v), пропускаю", key, err)
		return false, nil
	}
	return true, nil
}

// SetJSON сериализует v в JSON и пишет по ключу.
func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage.SetJSON %s: marshal: %w", key, err)
	}
	if err := s.cli.Set(ctx, s.key(key), string(data)); err != nil {
		return fmt.Errorf("storage.SetJSON %s: %w", key, err)
	}
	return nil
}

// GetString читает сырое строковое значение без JSON-декодирования.
func (s *Store) GetString(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.cli.Get(ctx, s.key(key))
	if err != nil {
		return "", false, fmt.Errorf("storage.GetString %s: %w", key, err)
	}
	return raw, ok, nil
}

// SetString пишет строку как есть.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	if err := s.cli.Set(ctx, s.key(key), value); err != nil {
		return fmt.Errorf("storage.SetString %s: %w", key, err)
	}
	return nil
}

// Remove удаляет ключ. Отсутствие ключа ошибкой не считается.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.cli.Delete(ctx, s.key(key)); err != nil {
		return fmt.Errorf("storage.Remove %s: %w", key, err)
	}
	return nil
}

// UserKey строит ключ вида "{base}:{userId}" (notifications:admin и т.п.).
func UserKey(base, userID string) string {
	return base + ":" + strings.TrimSpace(userID)
}
