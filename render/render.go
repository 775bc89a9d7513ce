// Package render turns downloaded photos into terminal half-block art.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// halfBlock draws the top pixel in the foreground and the bottom pixel in
// the background of a single cell.
const halfBlock = "▀"

// Downloader fetches raw image bytes.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Loader downloads and decodes images.
type Loader struct {
	downloader Downloader
}

// NewLoader builds a loader on top of a downloader.
func NewLoader(d Downloader) *Loader {
	return &Loader{downloader: d}
}

// Load downloads url and decodes it.
func (l *Loader) Load(ctx context.Context, url string) (image.Image, error) {
	data, err := l.downloader.Download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes JPEG, PNG, GIF, WebP and BMP data.
func Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode image: empty %s image", format)
	}
	return img, nil
}

// Fit returns the cell box that holds img inside cols×rows while keeping its
// aspect ratio. A cell covers one pixel column and two pixel rows.
func Fit(img image.Image, cols, rows int) (int, int) {
	b := img.Bounds()
	if cols <= 0 || rows <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return 0, 0
	}

	w := cols
	h := b.Dy() * w / b.Dx() / 2
	if h > rows {
		h = rows
		w = b.Dx() * h * 2 / b.Dy()
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// HalfBlocks renders img into at most cols×rows terminal cells.
func HalfBlocks(img image.Image, cols, rows int) string {
	w, h := Fit(img, cols, rows)
	if w == 0 || h == 0 {
		return ""
	}

	scaled := resize.Resize(uint(w), uint(h*2), img, resize.Bilinear)
	origin := scaled.Bounds().Min

	var sb strings.Builder
	for y := 0; y < h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			top := scaled.At(origin.X+x, origin.Y+2*y)
			bottom := scaled.At(origin.X+x, origin.Y+2*y+1)
			style := lipgloss.NewStyle().
				Foreground(hex(top)).
				Background(hex(bottom))
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String()
}

func hex(c color.Color) lipgloss.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B))
}
