package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/fblazt/toolbox/internal/model"
	"go.uber.org/zap"
)

// maxLineSize предел длины одной записи в файле.
const maxLineSize = 4 << 20

// FileStore хранит значения в памяти и дописывает каждое изменение
// в файл построчно (JSON Lines). При старте файл проигрывается целиком.
type FileStore struct {
	data   map[string]string
	mutex  sync.RWMutex
	file   string
	logger *zap.Logger
}

// NewFileStore инициализирует FileStore и загружает данные из файла.
// Пустой путь означает хранение только в памяти.
func NewFileStore(file string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := &FileStore{
		data:   make(map[string]string),
		file:   file,
		logger: logger,
	}

	if err := store.LoadFromFile(); err != nil {
		logger.Warn("Ошибка загрузки из файла", zap.String("file", file), zap.Error(err))
	}

	return store
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data[key] = value
	return s.AppendToFile(model.Entry{Key: key, Value: value})
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.AppendToFile(model.Entry{Key: key, Deleted: true})
}

func (s *FileStore) Ping(context.Context) error { return nil }

func (s *FileStore) Close() error { return nil }

// LoadFromFile загружает данные из файла при старте сервера.
func (s *FileStore) LoadFromFile() error {
	if s.file == "" {
		return nil
	}
	file, err := os.Open(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Файл ещё не создан, это не ошибка
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var entry model.Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			s.logger.Warn("Пропущена повреждённая строка файла хранилища",
				zap.String("file", s.file), zap.Int("line", line), zap.Error(err))
			continue
		}
		if entry.Deleted {
			delete(s.data, entry.Key)
			continue
		}
		s.data[entry.Key] = entry.Value
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read storage file at line %d: %w", line+1, err)
	}

	s.logger.Info("Загружены ключи из файла", zap.Int("count", len(s.data)), zap.String("file", s.file))
	return nil
}

// AppendToFile добавляет запись в файл. Вызывается под мьютексом.
func (s *FileStore) AppendToFile(entry model.Entry) error {
	if s.file == "" {
		return nil
	}
	file, err := os.OpenFile(s.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open storage file: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = file.Write(append(data, '\n'))
	return err
}
