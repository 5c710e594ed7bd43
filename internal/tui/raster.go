package tui

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/san-kum/mandelzoom/internal/control"
)

var dragTint = colorful.Color{R: 1, G: 0.1, B: 0.1}

// screen maps a block of terminal cells onto the engine raster. Each cell
// shows two vertically stacked pixels with the upper half block.
type screen struct {
	left, top  int
	cols, rows int
	w, h       int
}

// fit sizes the screen to at most maxCols x maxRows cells while keeping the
// raster aspect ratio, assuming cells twice as tall as wide.
func fit(w, h, maxCols, maxRows int) (cols, rows int) {
	if w <= 0 || h <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	cols = maxCols
	rows = cols * h / w / 2
	if rows > maxRows {
		rows = maxRows
		cols = rows * 2 * w / h
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// toCanvas converts a terminal cell to the raster pixel under its center.
// ok is false outside the screen.
func (s screen) toCanvas(x, y int) (control.Point, bool) {
	cx, cy := x-s.left, y-s.top
	if s.cols <= 0 || s.rows <= 0 || cx < 0 || cy < 0 || cx >= s.cols || cy >= s.rows {
		return control.Point{}, false
	}
	return control.Point{
		X: (float64(cx) + 0.5) * float64(s.w) / float64(s.cols),
		Y: (float64(cy) + 0.5) * float64(s.h) / float64(s.rows),
	}, true
}

// clampCanvas converts like toCanvas but pins cells outside the screen to
// its edge, so a drag can run off the canvas.
func (s screen) clampCanvas(x, y int) control.Point {
	x = max(s.left, min(x, s.left+s.cols-1))
	y = max(s.top, min(y, s.top+s.rows-1))
	p, _ := s.toCanvas(x, y)
	return p
}

// scale resamples the raster to cols x 2*rows pixels.
func (s screen) scale(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, s.cols, s.rows*2))
	if src == nil || src.Bounds().Empty() {
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// tint blends every pixel of img whose raster position falls inside r
// towards red.
func (s screen) tint(img *image.RGBA, r control.Rect) {
	r = r.Normalized()
	b := img.Bounds()
	sx := float64(s.w) / float64(b.Dx())
	sy := float64(s.h) / float64(b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		py := (float64(y) + 0.5) * sy
		if py < r.Y || py > r.Y+r.H {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			px := (float64(x) + 0.5) * sx
			if px < r.X || px > r.X+r.W {
				continue
			}
			c, _ := colorful.MakeColor(img.RGBAAt(x, y))
			r8, g8, b8 := c.BlendRgb(dragTint, 0.45).Clamped().RGB255()
			img.SetRGBA(x, y, color.RGBA{R: r8, G: g8, B: b8, A: 255})
		}
	}
}

// render draws the raster as half-block cells, with the drag rectangle
// tinted when dragging.
func (s screen) render(src *image.RGBA, drag control.Rect, dragging bool) string {
	if s.cols <= 0 || s.rows <= 0 {
		return ""
	}
	img := s.scale(src)
	if dragging {
		s.tint(img, drag)
	}

	var b strings.Builder
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			top := img.RGBAAt(col, row*2)
			bottom := img.RGBAAt(col, row*2+1)
			b.WriteString(lipgloss.NewStyle().
				Foreground(hex(top)).
				Background(hex(bottom)).
				Render("▀"))
		}
		if row < s.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func hex(c color.RGBA) lipgloss.Color {
	cf, _ := colorful.MakeColor(c)
	return lipgloss.Color(cf.Hex())
}
