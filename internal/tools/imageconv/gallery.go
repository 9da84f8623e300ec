package imageconv

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fblazt/toolbox/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound дескриптор неизвестен или уже освобождён.
var ErrNotFound = errors.New("image not found")

// State состояние последнего запуска пакета.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Policy определяет, что делать с пакетом, если часть файлов не сконвертирована.
type Policy string

const (
	// PolicyAllOrNothing отбрасывает весь пакет при любой ошибке.
	PolicyAllOrNothing Policy = "all-or-nothing"
	// PolicyBestEffort сохраняет все удачные файлы.
	PolicyBestEffort Policy = "best-effort"
)

// ParsePolicy разбирает имя политики.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAllOrNothing, PolicyBestEffort:
		return Policy(s), nil
	case "":
		return PolicyAllOrNothing, nil
	}
	return "", fmt.Errorf("unknown batch policy %q", s)
}

type asset struct {
	meta model.ConvertedImage
	data []byte
}

// Gallery владеет сконвертированными изображениями одного клиента.
// Байты изображения живут, пока оно не удалено через Remove или Clear.
type Gallery struct {
	mu       sync.Mutex
	pipeline *Pipeline
	policy   Policy
	baseURL  string
	logger   *zap.Logger

	state  State
	order  []string
	assets map[string]*asset
}

// NewGallery создаёт пустую галерею. baseURL используется для ссылок
// на скачивание, например "/api/images".
func NewGallery(pipeline *Pipeline, policy Policy, baseURL string, logger *zap.Logger) *Gallery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gallery{
		pipeline: pipeline,
		policy:   policy,
		baseURL:  baseURL,
		logger:   logger,
		state:    StateIdle,
		assets:   make(map[string]*asset),
	}
}

// State возвращает состояние последнего пакета.
func (g *Gallery) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// AddBatch конвертирует пакет и за один шаг добавляет результаты в галерею.
func (g *Gallery) AddBatch(ctx context.Context, sources []Source, quality int) (model.BatchResponse, error) {
	if err := ValidateQuality(quality); err != nil {
		return model.BatchResponse{}, err
	}

	g.mu.Lock()
	g.state = StateProcessing
	g.mu.Unlock()

	outcomes, skipped, err := g.pipeline.Run(ctx, sources, quality)
	if err != nil {
		g.setState(StateFailed)
		return model.BatchResponse{}, err
	}

	var failures []model.FileFailure
	for _, o := range outcomes {
		if o.Err != nil {
			failures = append(failures, model.FileFailure{Name: o.Name, Error: o.Err.Error()})
			g.logger.Error("Error converting images", zap.String("file", o.Name), zap.Error(o.Err))
		}
	}

	resp := model.BatchResponse{Skipped: skipped, Failures: failures, Added: []model.ConvertedImage{}}

	g.mu.Lock()
	defer g.mu.Unlock()

	if len(failures) > 0 && g.policy == PolicyAllOrNothing {
		g.state = StateFailed
		resp.State = string(g.state)
		return resp, nil
	}

	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		id := uuid.NewString()
		a := &asset{
			meta: model.ConvertedImage{
				ID:           id,
				OriginalName: o.Image.Name,
				OriginalSize: o.Image.OriginalSize,
				EncodedSize:  int64(len(o.Image.Data)),
				Quality:      o.Image.Quality,
				URL:          g.baseURL + "/" + id,
			},
			data: o.Image.Data,
		}
		g.assets[id] = a
		g.order = append(g.order, id)
		resp.Added = append(resp.Added, a.meta)
	}

	if len(failures) > 0 {
		g.state = StateFailed
	} else {
		g.state = StateDone
	}
	resp.State = string(g.state)
	return resp, nil
}

func (g *Gallery) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

// List возвращает изображения в порядке добавления.
func (g *Gallery) List() []model.ConvertedImage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.ConvertedImage, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.assets[id].meta)
	}
	return out
}

// Len количество изображений в галерее.
func (g *Gallery) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

// Open возвращает имя для скачивания и байты изображения.
func (g *Gallery) Open(id string) (string, []byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.assets[id]
	if !ok {
		return "", nil, ErrNotFound
	}
	return DownloadName(a.meta.OriginalName), a.data, nil
}

// Remove удаляет изображение и освобождает его байты.
func (g *Gallery) Remove(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.assets[id]
	if !ok {
		return ErrNotFound
	}
	a.data = nil
	delete(g.assets, id)
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear освобождает все изображения и возвращает их количество.
func (g *Gallery) Clear() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.order)
	for _, a := range g.assets {
		a.data = nil
	}
	g.assets = make(map[string]*asset)
	g.order = nil
	g.state = StateIdle
	return n
}

// Archive пишет все изображения в zip-архив.
func (g *Gallery) Archive(w io.Writer) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	zw := zip.NewWriter(w)
	used := make(map[string]bool)
	taken := func(name string) bool { return used[name] }
	for _, id := range g.order {
		a := g.assets[id]
		name := UniqueName(DownloadName(a.meta.OriginalName), taken)
		used[name] = true

		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create archive entry: %w", err)
		}
		if _, err := f.Write(a.data); err != nil {
			return fmt.Errorf("write archive entry: %w", err)
		}
	}
	return zw.Close()
}

// UniqueName возвращает name, а если оно занято, первое свободное "N-name".
func UniqueName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%d-%s", n, name)
		if !taken(candidate) {
			return candidate
		}
	}
}
