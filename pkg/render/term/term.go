// Package term renders images into terminal cells.
//
// Each cell shows two vertically stacked pixels using the upper half block
// "▀": the foreground is the top pixel and the background the bottom one.
// Images larger than the available cells are scaled down with
// golang.org/x/image/draw, nearest-neighbor so that a marked seam stays a
// crisp one-pixel line.
package term

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
)

const halfBlock = "▀"

// Fit returns the largest pixel size with the aspect ratio of src that fits
// in cols x rows cells. One cell holds one pixel across and two down.
// The result never upscales and is at least 1x1.
func Fit(src image.Rectangle, cols, rows int) image.Point {
	w, h := src.Dx(), src.Dy()
	maxW, maxH := max(cols, 1), max(rows*2, 1)
	if w <= maxW && h <= maxH {
		return image.Pt(max(w, 1), max(h, 1))
	}
	// Scale by the tighter of the two ratios, rounding down.
	if w*maxH > h*maxW {
		return image.Pt(maxW, max(h*maxW/w, 1))
	}
	return image.Pt(max(w*maxH/h, 1), maxH)
}

// Scale resizes img to size. It returns img unchanged when no resize is needed.
func Scale(img image.Image, size image.Point) image.Image {
	if img.Bounds().Size() == size {
		return img
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Renderer converts images to styled strings.
type Renderer struct {
	r *lipgloss.Renderer
}

// NewRenderer creates a Renderer. A nil lipgloss renderer uses the default.
func NewRenderer(r *lipgloss.Renderer) *Renderer {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Renderer{r: r}
}

// Render draws img scaled to fit cols x rows cells.
func (t *Renderer) Render(img image.Image, cols, rows int) string {
	img = Scale(img, Fit(img.Bounds(), cols, rows))
	b := img.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := t.r.NewStyle().Foreground(hex(img.At(x, y)))
			if y+1 < b.Max.Y {
				style = style.Background(hex(img.At(x, y+1)))
			}
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String()
}

// Render draws img with the default renderer.
func Render(img image.Image, cols, rows int) string {
	return NewRenderer(nil).Render(img, cols, rows)
}

func hex(c color.Color) lipgloss.Color {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B))
}
