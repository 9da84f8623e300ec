package service

import (
	"context"
	"sync"
	"time"

	"github.com/fblazt/toolbox/internal/catalog"
	"github.com/fblazt/toolbox/internal/model"
	"github.com/fblazt/toolbox/internal/storage"
	"github.com/fblazt/toolbox/internal/theme"
	"github.com/fblazt/toolbox/internal/tools/apitester"
	"github.com/fblazt/toolbox/internal/tools/imageconv"
	"github.com/fblazt/toolbox/internal/tools/jwtdecoder"
	"github.com/fblazt/toolbox/internal/tools/markdown"
	"go.uber.org/zap"
)

// Workspace состояние инструментов одного клиента.
type Workspace struct {
	Gallery *imageconv.Gallery
	Tester  *apitester.Tester
	Theme   *theme.Store

	lastSeen time.Time
}

// ToolboxService связывает инструменты с хранилищем и клиентами.
// Используется и HTTP-обработчиками, и gRPC-сервером.
type ToolboxService struct {
	Store    storage.KV
	Client   apitester.Doer
	Pipeline *imageconv.Pipeline
	Policy   imageconv.Policy
	ImageURL string
	Logger   *zap.Logger

	now        func() time.Time
	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewToolboxService(store storage.KV, client apitester.Doer, pipeline *imageconv.Pipeline,
	policy imageconv.Policy, imageURL string, logger *zap.Logger) *ToolboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolboxService{
		Store:      store,
		Client:     client,
		Pipeline:   pipeline,
		Policy:     policy,
		ImageURL:   imageURL,
		Logger:     logger,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Workspace возвращает состояние клиента, создавая его при первом обращении.
// История и тема читаются из хранилища один раз, при создании, и без общей
// блокировки: медленное хранилище задерживает только этого клиента.
func (s *ToolboxService) Workspace(ctx context.Context, clientID string) *Workspace {
	s.mu.Lock()
	if ws, ok := s.workspaces[clientID]; ok {
		ws.lastSeen = s.now()
		s.mu.Unlock()
		return ws
	}
	s.mu.Unlock()

	ws := s.newWorkspace(ctx, clientID)

	s.mu.Lock()
	defer s.mu.Unlock()
	// параллельный запрос того же клиента мог успеть первым
	if existing, ok := s.workspaces[clientID]; ok {
		existing.lastSeen = s.now()
		return existing
	}
	ws.lastSeen = s.now()
	s.workspaces[clientID] = ws
	return ws
}

func (s *ToolboxService) newWorkspace(ctx context.Context, clientID string) *Workspace {
	kv := storage.Namespace(s.Store, clientID)
	logger := s.Logger.With(zap.String("client", clientID))
	ws := &Workspace{
		Gallery: imageconv.NewGallery(s.Pipeline, s.Policy, s.ImageURL, logger),
		Tester:  apitester.New(ctx, s.Client, kv, logger),
		Theme:   theme.NewStore(ctx, kv, logger),
	}
	ws.Theme.Subscribe(func(t theme.Theme) {
		logger.Debug("Theme changed", zap.String("theme", string(t)))
	})
	return ws
}

// Sweep освобождает состояние клиентов, не обращавшихся дольше idle.
// Сохранённые тема и история остаются в хранилище.
func (s *ToolboxService) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	n := 0
	for id, ws := range s.workspaces {
		if ws.lastSeen.Before(cutoff) {
			ws.Gallery.Clear()
			delete(s.workspaces, id)
			n++
		}
	}
	if n > 0 {
		s.Logger.Info("Released idle workspaces", zap.Int("count", n))
	}
	return n
}

// DecodeJWT декодирует токен без проверки подписи.
func (s *ToolboxService) DecodeJWT(raw string) model.DecodedToken {
	return jwtdecoder.Decode(raw, s.now())
}

// RenderMarkdown рендерит markdown в HTML.
func (s *ToolboxService) RenderMarkdown(src string) (string, error) {
	return markdown.HTML(src)
}

// SearchTools фильтрует каталог.
func (s *ToolboxService) SearchTools(query string) []model.ToolGroup {
	return catalog.Search(query)
}

// Ping проверяет хранилище.
func (s *ToolboxService) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}
