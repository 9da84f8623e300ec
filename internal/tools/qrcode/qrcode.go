// Package qrcode рисует QR-коды в PNG и SVG.
package qrcode

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	qr "github.com/skip2/go-qrcode"
)

const (
	DefaultSize       = 256
	MinSize           = 128
	MaxSize           = 512
	DefaultForeground = "#000000"
	DefaultBackground = "#ffffff"

	PNGName = "qrcode.png"
	SVGName = "qrcode.svg"
)

var (
	ErrEmptyText    = errors.New("Enter text to generate QR code")
	ErrInvalidSize  = fmt.Errorf("size must be between %d and %d pixels", MinSize, MaxSize)
	ErrInvalidColor = errors.New("color must be in #rrggbb format")
	ErrTextTooLong  = errors.New("text is too long for a QR code")
)

// Options параметры генерации.
type Options struct {
	Text       string
	Size       int
	Foreground string
	Background string
}

// WithDefaults заполняет пустые поля значениями по умолчанию.
func (o Options) WithDefaults() Options {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.Foreground == "" {
		o.Foreground = DefaultForeground
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	return o
}

type prepared struct {
	code   *qr.QRCode
	fg, bg color.RGBA
	size   int
}

func prepare(o Options) (*prepared, error) {
	o = o.WithDefaults()
	if o.Text == "" {
		return nil, ErrEmptyText
	}
	if o.Size < MinSize || o.Size > MaxSize {
		return nil, ErrInvalidSize
	}
	fg, err := ParseColor(o.Foreground)
	if err != nil {
		return nil, err
	}
	bg, err := ParseColor(o.Background)
	if err != nil {
		return nil, err
	}

	// qr.New падает только если текст не помещается в QR-код
	code, err := qr.New(o.Text, qr.Highest)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrTextTooLong, len(o.Text))
	}
	code.ForegroundColor = fg
	code.BackgroundColor = bg
	code.DisableBorder = false

	return &prepared{code: code, fg: fg, bg: bg, size: o.Size}, nil
}

// PNG возвращает QR-код в PNG размером Size x Size.
func PNG(o Options) ([]byte, error) {
	p, err := prepare(o)
	if err != nil {
		return nil, err
	}
	return p.code.PNG(p.size)
}

// SVG возвращает QR-код в SVG, по одному прямоугольнику на тёмный модуль.
func SVG(o Options) ([]byte, error) {
	p, err := prepare(o)
	if err != nil {
		return nil, err
	}
	bitmap := p.code.Bitmap()
	n := len(bitmap)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, p.size, p.size, n, n)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, n, n, hex(p.bg))
	fmt.Fprintf(&b, `<path fill="%s" d="`, hex(p.fg))
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, "M%d %dh1v1h-1z", x, y)
			}
		}
	}
	b.WriteString(`"/></svg>`)
	return []byte(b.String()), nil
}

// ParseColor разбирает цвет вида #rrggbb.
func ParseColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, ErrInvalidColor
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, ErrInvalidColor
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
