package canvas

import (
	"math"
	"strings"

	"bubble-level.klederson.com/internal/level"
	"github.com/charmbracelet/lipgloss"
)

// halfBlock paints the top pixel with the foreground and the bottom pixel
// with the background, so one terminal cell holds two pixels.
const halfBlock = "▀"

// Raster is a width×height grid of pixels. Pixels outside the grid are
// clipped silently.
type Raster struct {
	width, height int
	pix           []level.Color
}

// NewRaster creates a raster filled with the background color.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	r := &Raster{width: width, height: height, pix: make([]level.Color, width*height)}
	r.DrawPaint(level.ColorBackground)
	return r
}

// Size returns the raster dimensions in pixels.
func (r *Raster) Size() (int, int) { return r.width, r.height }

// At returns the color of pixel (x, y), or "" outside the grid.
func (r *Raster) At(x, y int) level.Color {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return ""
	}
	return r.pix[y*r.width+x]
}

func (r *Raster) set(x, y int, c level.Color) {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return
	}
	r.pix[y*r.width+x] = c
}

// DrawPaint fills the whole raster.
func (r *Raster) DrawPaint(c level.Color) {
	for i := range r.pix {
		r.pix[i] = c
	}
}

// DrawCircle fills every pixel whose center lies within rad of (cx, cy).
func (r *Raster) DrawCircle(cx, cy, rad float64, c level.Color) {
	if rad <= 0 || math.IsNaN(cx) || math.IsNaN(cy) || math.IsNaN(rad) {
		return
	}
	x0 := max(0, int(math.Floor(cx-rad)))
	x1 := min(r.width-1, int(math.Ceil(cx+rad)))
	y0 := max(0, int(math.Floor(cy-rad)))
	y1 := min(r.height-1, int(math.Ceil(cy+rad)))
	r2 := rad * rad
	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - cy
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy <= r2 {
				r.pix[y*r.width+x] = c
			}
		}
	}
}

// DrawLine draws a one pixel wide line using a DDA walk.
func (r *Raster) DrawLine(x1, y1, x2, y2 float64, c level.Color) {
	dx, dy := x2-x1, y2-y1
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps < 1 {
		r.set(int(math.Floor(x1)), int(math.Floor(y1)), c)
		return
	}
	// Lines far longer than the raster are skipped.
	if steps > 4*(r.width+r.height)+4 {
		return
	}
	sx, sy := dx/float64(steps), dy/float64(steps)
	for i := 0; i <= steps; i++ {
		x := x1 + sx*float64(i)
		y := y1 + sy*float64(i)
		r.set(int(math.Floor(x)), int(math.Floor(y)), c)
	}
}

type cellKey struct {
	top, bottom level.Color
}

// String renders the raster as terminal rows, two pixel rows per line.
func (r *Raster) String() string {
	if r.width == 0 || r.height == 0 {
		return ""
	}
	styles := make(map[cellKey]lipgloss.Style)
	style := func(k cellKey) lipgloss.Style {
		st, ok := styles[k]
		if !ok {
			st = lipgloss.NewStyle().
				Foreground(lipgloss.Color(k.top)).
				Background(lipgloss.Color(k.bottom))
			styles[k] = st
		}
		return st
	}

	var sb strings.Builder
	for y := 0; y < r.height; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		run := 0
		var cur cellKey
		for x := 0; x < r.width; x++ {
			k := cellKey{top: r.At(x, y), bottom: r.At(x, y+1)}
			if k.bottom == "" {
				k.bottom = level.ColorBackground
			}
			if run > 0 && k != cur {
				sb.WriteString(style(cur).Render(strings.Repeat(halfBlock, run)))
				run = 0
			}
			cur = k
			run++
		}
		sb.WriteString(style(cur).Render(strings.Repeat(halfBlock, run)))
	}
	return sb.String()
}
