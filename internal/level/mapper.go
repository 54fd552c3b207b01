package level

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrInvalidMaxGravity rejects a normalization constant that would divide
// by zero or flip the mapping.
var ErrInvalidMaxGravity = errors.New("max gravity must be a positive finite number")

// Mapper turns gravity samples into a bubble position clamped to the
// reachable disk of the current geometry.
type Mapper struct {
	maxGravity float64
	pos        *Position
	geom       *GeometryCache

	// mu orders samples against geometry becoming ready, so the last
	// accepted sample is never projected through a stale layout.
	mu      sync.Mutex
	last    Point
	hasLast bool
}

// NewMapper creates a mapper writing into pos.
func NewMapper(maxGravity float64, pos *Position, geom *GeometryCache) (*Mapper, error) {
	if !(maxGravity > 0) || math.IsInf(maxGravity, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMaxGravity, maxGravity)
	}
	return &Mapper{maxGravity: maxGravity, pos: pos, geom: geom}, nil
}

// OnSample maps lateral gravity (gx, gy) to a bubble position. maxGravity
// of lateral gravity puts the bubble exactly on the edge of the reachable
// disk; anything beyond is scaled back onto the edge along the same
// direction. It returns false, leaving the position alone, while the
// geometry is not known yet or when a component is NaN or infinite. A
// finite sample that arrives before the geometry is kept for Observe.
func (m *Mapper) OnSample(gx, gy float64) bool {
	if !finite(gx) || !finite(gy) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last, m.hasLast = Point{gx, gy}, true
	g, ok := m.geom.Load()
	if !ok {
		return false
	}
	m.pos.Store(Project(g, m.maxGravity, gx, gy))
	return true
}

// Observe derives the geometry of a width×height surface when none is
// ready yet. Before the geometry is published the bubble is placed for it:
// the last accepted sample is projected again, or the bubble sits at the
// center when no sample has arrived. A recreated surface therefore never
// shows a position computed for the previous one.
func (m *Mapper) Observe(width, height int, metrics Metrics) (Geometry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.geom.Load(); ok {
		return g, true
	}
	g, ok := DeriveGeometry(width, height, metrics)
	if !ok {
		return Geometry{}, false
	}
	if m.hasLast {
		m.pos.Store(Project(g, m.maxGravity, m.last.X, m.last.Y))
	} else {
		m.pos.Store(g.Center)
	}
	return m.geom.publish(g), true
}

// Project is the pure mapping behind OnSample.
func Project(g Geometry, maxGravity, gx, gy float64) Point {
	reach := g.MaxReach()
	if reach <= 0 {
		return g.Center
	}
	offset := Point{
		X: reach * (gx / maxGravity),
		Y: reach * (gy / maxGravity),
	}
	predicted := offset.Len()
	if predicted > reach {
		return g.Center.Add(offset.Scale(reach / predicted))
	}
	return g.Center.Add(offset)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
