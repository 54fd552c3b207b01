package level

import (
	"context"
	"errors"

	"bubble-level.klederson.com/internal/config"
)

// Color is a hex RGB color, "#RRGGBB".
type Color string

const (
	ColorBackground Color = "#FFFFFF"
	ColorDefault    Color = "#AAAAAA"
	ColorCorrect    Color = "#99CC00"
)

// Scheme picks the colors for one frame.
type Scheme struct {
	Background Color
	Ring       Color
	Bubble     Color
	Crosshair  Color
}

var (
	// DefaultScheme is used while the bubble is off center.
	DefaultScheme = Scheme{
		Background: ColorBackground,
		Ring:       ColorDefault,
		Bubble:     ColorDefault,
		Crosshair:  ColorDefault,
	}
	// CorrectScheme is used while the bubble is within the margin of error.
	CorrectScheme = Scheme{
		Background: ColorBackground,
		Ring:       ColorCorrect,
		Bubble:     ColorCorrect,
		Crosshair:  ColorDefault,
	}
)

// Canvas is the set of drawing primitives a frame offers.
type Canvas interface {
	DrawPaint(c Color)
	DrawCircle(cx, cy, r float64, c Color)
	DrawLine(x1, y1, x2, y2 float64, c Color)
}

// Frame is a canvas held exclusively until it is posted or discarded.
type Frame interface {
	Canvas
	// Post presents the frame and releases the lock.
	Post() error
	// Discard releases the lock without presenting anything.
	Discard()
}

// Surface is where the render loop draws.
type Surface interface {
	// Lock blocks until a frame may be drawn, or ctx is done.
	Lock(ctx context.Context) (Frame, error)
	// Size reports the surface size in pixels, zero while unknown.
	Size() (width, height int)
}

var (
	// ErrNilFrame is reported when a surface hands out no frame.
	ErrNilFrame = errors.New("surface returned a nil frame")
	// ErrSurfaceReleased is returned by a surface that will never hand out
	// another frame. The render loop stops when it sees it.
	ErrSurfaceReleased = errors.New("surface released")
)

// IsLevel reports whether p is within the margin of error of center. The
// boundary itself counts as level.
func IsLevel(p, center Point) bool {
	return p.Sub(center).Len2() <= config.MarginOfError*config.MarginOfError
}

// SchemeFor returns the color scheme for a bubble at p.
func SchemeFor(p, center Point) Scheme {
	if IsLevel(p, center) {
		return CorrectScheme
	}
	return DefaultScheme
}

// Paint draws one complete frame: background, ring, inner cutout, bubble
// and crosshair. Without geometry only the background is painted.
func Paint(c Canvas, g Geometry, ready bool, p Point) {
	c.DrawPaint(ColorBackground)
	if !ready {
		return
	}
	s := SchemeFor(p, g.Center)
	cx, cy := g.Center.X, g.Center.Y
	r := g.IndicatorRadius

	c.DrawCircle(cx, cy, g.BorderRadius, s.Ring)
	c.DrawCircle(cx, cy, g.BorderRadius-g.BorderWidth, s.Background)
	c.DrawCircle(p.X, p.Y, r, s.Bubble)
	c.DrawLine(cx-r, cy, cx+r, cy, s.Crosshair)
	c.DrawLine(cx, cy-r, cx, cy+r, s.Crosshair)
}
