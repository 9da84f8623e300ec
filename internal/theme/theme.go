// Package theme хранит предпочтение светлой или тёмной темы.
package theme

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fblazt/toolbox/internal/storage"
	"go.uber.org/zap"
)

// StorageKey ключ темы в локальном хранилище.
const StorageKey = "vite-ui-theme"

// Theme режим отображения.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	Default = Dark
)

// ErrUnknownTheme неизвестное значение темы.
var ErrUnknownTheme = errors.New("theme must be light or dark")

// Parse проверяет значение темы.
func Parse(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

// Store единственный писатель ключа темы. Значение читается из хранилища
// один раз при создании, дальше каждое изменение сразу пишется обратно
// и рассылается подписчикам.
type Store struct {
	kv     storage.KV
	logger *zap.Logger

	mu        sync.RWMutex
	current   Theme
	listeners []func(Theme)
}

// NewStore создаёт Store и читает сохранённую тему.
func NewStore(ctx context.Context, kv storage.KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{kv: kv, logger: logger, current: Default}

	raw, err := kv.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		logger.Warn("Не удалось прочитать тему", zap.Error(err))
	default:
		if t, err := Parse(raw); err == nil {
			s.current = t
		} else {
			logger.Warn("Сохранена неизвестная тема", zap.String("value", raw))
		}
	}
	return s
}

// Current возвращает активную тему.
func (s *Store) Current() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set сохраняет и применяет тему.
func (s *Store) Set(ctx context.Context, t Theme) error {
	if _, err := Parse(string(t)); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.kv.Set(ctx, StorageKey, string(t)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save theme: %w", err)
	}
	s.current = t
	listeners := append([]func(Theme){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(t)
	}
	return nil
}

// Toggle переключает тему на противоположную.
func (s *Store) Toggle(ctx context.Context) (Theme, error) {
	next := Light
	if s.Current() == Light {
		next = Dark
	}
	return next, s.Set(ctx, next)
}

// Subscribe регистрирует функцию, вызываемую после каждой смены темы.
func (s *Store) Subscribe(fn func(Theme)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
