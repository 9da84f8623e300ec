package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/fblazt/toolbox/internal/database"
	"github.com/fblazt/toolbox/internal/storage"
	"github.com/jackc/pgx/v5"
)

// KVRepository реализует storage.KV поверх таблицы kv в PostgreSQL.
type KVRepository struct {
	DB database.DBInterface
}

// NewKVRepository создаёт новый экземпляр KVRepository.
func NewKVRepository(db database.DBInterface) *KVRepository {
	return &KVRepository{DB: db}
}

// Get извлекает значение по ключу.
func (r *KVRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.DB.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("database query error: %w", err)
	}
	return value, nil
}

// Set сохраняет значение, при конфликте ключа перезаписывает его.
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv (key, value, updated_at)
              VALUES ($1, $2, now())
              ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := r.DB.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("database upsert error: %w", err)
	}
	return nil
}

// Delete удаляет ключ.
func (r *KVRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.DB.Exec(ctx, `DELETE FROM kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("database delete error: %w", err)
	}
	return nil
}

// Ping проверяет доступность базы данных.
func (r *KVRepository) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}

func (r *KVRepository) Close() error {
	r.DB.Close()
	return nil
}
