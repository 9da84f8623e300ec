package imageconv

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Outcome результат по одному файлу: либо Image, либо Err.
type Outcome struct {
	Name  string
	Image *Encoded
	Err   error
}

// Pipeline конвертирует файлы пакета параллельно и независимо друг от друга.
type Pipeline struct {
	Converter   *Converter
	MaxParallel int // 0 - без ограничения
	Logger      *zap.Logger
}

// NewPipeline создаёт пайплайн.
func NewPipeline(conv *Converter, maxParallel int, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{Converter: conv, MaxParallel: maxParallel, Logger: logger}
}

// Run возвращает по одному Outcome на каждый файл-изображение в порядке
// входа и имена пропущенных файлов, которые изображениями не являются.
func (p *Pipeline) Run(ctx context.Context, sources []Source, quality int) ([]Outcome, []string, error) {
	if err := ValidateQuality(quality); err != nil {
		return nil, nil, err
	}

	var skipped []string
	images := make([]Source, 0, len(sources))
	for _, src := range sources {
		if !src.IsImage() {
			skipped = append(skipped, src.Name)
			continue
		}
		images = append(images, src)
	}

	outcomes := make([]Outcome, len(images))
	var g errgroup.Group
	if p.MaxParallel > 0 {
		g.SetLimit(p.MaxParallel)
	}
	for i, src := range images {
		g.Go(func() error {
			enc, err := p.Converter.Convert(ctx, src, quality)
			outcomes[i] = Outcome{Name: src.Name, Image: enc, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes, skipped, nil
}
