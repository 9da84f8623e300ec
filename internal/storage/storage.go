package storage

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, если ключа нет в хранилище.
var ErrNotFound = errors.New("key not found")

// KV определяет интерфейс локального хранилища ключ-значение.
// Это аналог localStorage браузера: значения хранятся строками.
//
//go:generate mockgen -destination=mocks/mock_kv.go -package=mocks github.com/fblazt/toolbox/internal/storage KV
type KV interface {
	// Get возвращает значение по ключу или ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set сохраняет значение, перезаписывая предыдущее.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключ. Удаление отсутствующего ключа не ошибка.
	Delete(ctx context.Context, key string) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
	// Close освобождает ресурсы хранилища.
	Close() error
}
