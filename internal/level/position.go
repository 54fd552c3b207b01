package level

import (
	"math"
	"sync/atomic"
)

// Position is the bubble center shared between the sensor goroutine
// (single writer) and the render loop (single reader). Each coordinate is
// stored atomically; a reader may see x from one sample and y from the
// next, which is acceptable for a display.
type Position struct {
	x atomic.Uint64
	y atomic.Uint64
}

// Store overwrites the position.
func (p *Position) Store(pt Point) {
	p.x.Store(math.Float64bits(pt.X))
	p.y.Store(math.Float64bits(pt.Y))
}

// Load returns the latest position.
func (p *Position) Load() Point {
	return Point{
		X: math.Float64frombits(p.x.Load()),
		Y: math.Float64frombits(p.y.Load()),
	}
}
