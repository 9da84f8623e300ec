// Package imageconv перекодирует изображения в WebP и хранит результаты
// в галерее клиента до явного удаления.
package imageconv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DefaultQuality = 80
	MinQuality     = 1
	MaxQuality     = 100

	// MaxDimension предел ширины и высоты в формате WebP.
	MaxDimension = 16383
	// DefaultMaxPixels предел площади по умолчанию, 40 Мп.
	DefaultMaxPixels = 40_000_000
)

var (
	// ErrInvalidQuality качество вне диапазона 1..100.
	ErrInvalidQuality = fmt.Errorf("quality must be between %d and %d", MinQuality, MaxQuality)
	// ErrImageTooLarge изображение превышает предел размеров.
	ErrImageTooLarge = errors.New("image dimensions exceed the limit")
)

// ConvertError ошибка конвертации одного файла.
type ConvertError struct {
	Name  string
	Stage string
	Err   error
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("%s: failed to %s image: %v", e.Name, e.Stage, e.Err)
}

func (e *ConvertError) Unwrap() error { return e.Err }

// Source входной файл пакета.
type Source struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsImage повторяет фильтр загрузки: берутся только image/*.
func (s Source) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(s.ContentType), "image/")
}

// Encoded результат конвертации одного файла.
type Encoded struct {
	Name         string
	OriginalSize int64
	Quality      int
	Data         []byte
}

// Encoder кодирует растр в целевой формат.
type Encoder interface {
	Encode(w io.Writer, img image.Image, quality int) error
}

// WebPEncoder кодирует в lossy WebP через libwebp.
type WebPEncoder struct{}

func (WebPEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: float32(quality)})
}

// Converter декодирует файл, рисует его на растре исходного размера
// и перекодирует растр. Размеры проверяются по заголовку до декодирования.
type Converter struct {
	Encoder   Encoder
	MaxPixels int // 0 - DefaultMaxPixels
}

// NewConverter создаёт конвертер в WebP.
func NewConverter() *Converter {
	return &Converter{Encoder: WebPEncoder{}, MaxPixels: DefaultMaxPixels}
}

// checkBounds сверяет размеры из заголовка с пределами.
func (c *Converter) checkBounds(width, height int) error {
	limit := c.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: %dx%d, max side %d px", ErrImageTooLarge, width, height, MaxDimension)
	}
	if int64(width)*int64(height) > int64(limit) {
		return fmt.Errorf("%w: %dx%d, max %d pixels", ErrImageTooLarge, width, height, limit)
	}
	return nil
}

// ValidateQuality проверяет значение качества.
func ValidateQuality(quality int) error {
	if quality < MinQuality || quality > MaxQuality {
		return ErrInvalidQuality
	}
	return nil
}

// Convert конвертирует один файл.
func (c *Converter) Convert(ctx context.Context, src Source, quality int) (*Encoded, error) {
	if err := ValidateQuality(quality); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &ConvertError{Name: src.Name, Stage: "load", Err: err}
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(src.Data))
	if err != nil {
		return nil, &ConvertError{Name: src.Name, Stage: "load", Err: err}
	}
	if err := c.checkBounds(header.Width, header.Height); err != nil {
		return nil, &ConvertError{Name: src.Name, Stage: "load", Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return nil, &ConvertError{Name: src.Name, Stage: "load", Err: err}
	}

	bounds := img.Bounds()
	surface := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(surface, surface.Bounds(), img, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := c.Encoder.Encode(&buf, surface, quality); err != nil {
		return nil, &ConvertError{Name: src.Name, Stage: "convert", Err: err}
	}
	if buf.Len() == 0 {
		return nil, &ConvertError{Name: src.Name, Stage: "convert", Err: errors.New("encoder produced no data")}
	}

	return &Encoded{
		Name:         src.Name,
		OriginalSize: int64(len(src.Data)),
		Quality:      quality,
		Data:         buf.Bytes(),
	}, nil
}

// DownloadName заменяет расширение файла на .webp.
func DownloadName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "image"
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".webp"
}
