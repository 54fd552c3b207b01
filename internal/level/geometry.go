package level

import (
	"math"
	"sync/atomic"

	"bubble-level.klederson.com/internal/config"
)

// Point is a position in surface pixels, origin top-left, y down.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Scale returns p * k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len2 is the squared distance from the origin.
func (p Point) Len2() float64 { return p.X*p.X + p.Y*p.Y }

// Len is the distance from the origin.
func (p Point) Len() float64 { return math.Sqrt(p.Len2()) }

// Metrics converts density-independent sizes to surface pixels.
type Metrics struct {
	Density float64 // px per dp
}

// Dp converts v dp to pixels.
func (m Metrics) Dp(v float64) float64 { return v * m.Density }

// Geometry holds the ring and bubble layout of one surface instance.
type Geometry struct {
	Center          Point
	BorderRadius    float64
	BorderWidth     float64
	IndicatorRadius float64
}

// MaxReach is the furthest the bubble center may sit from Center.
func (g Geometry) MaxReach() float64 {
	return g.BorderRadius - g.BorderWidth - g.IndicatorRadius
}

// DeriveGeometry lays out the ring for a width×height surface. It reports
// false while either dimension is still unknown (zero).
func DeriveGeometry(width, height int, m Metrics) (Geometry, bool) {
	if width <= 0 || height <= 0 {
		return Geometry{}, false
	}
	w, h := float64(width), float64(height)
	return Geometry{
		Center:          Point{w / 2, h / 2},
		BorderRadius:    math.Min(w, h)/2 - m.Dp(config.BorderInsetDp),
		BorderWidth:     m.Dp(config.BorderWidthDp),
		IndicatorRadius: m.Dp(config.IndicatorRadiusDp),
	}, true
}

// GeometryCache is the Uninitialized | Ready state of a surface's
// geometry. It is written once by the render loop and read by the mapper.
type GeometryCache struct {
	g atomic.Pointer[Geometry]
}

// Load returns the geometry and whether it is ready.
func (c *GeometryCache) Load() (Geometry, bool) {
	g := c.g.Load()
	if g == nil {
		return Geometry{}, false
	}
	return *g, true
}

// Observe derives the geometry from the first non-zero dimensions seen.
// Once Ready, later calls return the cached value unchanged.
func (c *GeometryCache) Observe(width, height int, m Metrics) (Geometry, bool) {
	if g := c.g.Load(); g != nil {
		return *g, true
	}
	g, ok := DeriveGeometry(width, height, m)
	if !ok {
		return Geometry{}, false
	}
	return c.publish(g), true
}

// publish moves the cache to Ready with g unless another writer got there
// first, and returns whichever geometry won.
func (c *GeometryCache) publish(g Geometry) Geometry {
	if !c.g.CompareAndSwap(nil, &g) {
		return *c.g.Load()
	}
	return g
}

// Reset returns the cache to Uninitialized when its surface goes away.
func (c *GeometryCache) Reset() {
	c.g.Store(nil)
}

// Heading returns the compass direction of an offset in radians [0, 2π),
// 0 = up on screen, increasing clockwise.
func Heading(offset Point) float64 {
	return NormalizeAngle(math.Atan2(offset.X, -offset.Y))
}

// NormalizeAngle wraps an angle to [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// TiltDegrees is the angle between the gravity vector and the device's
// z axis: 0 when lying flat.
func TiltDegrees(gx, gy, gz float64) float64 {
	return math.Atan2(math.Hypot(gx, gy), gz) * 180 / math.Pi
}
