package level

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"bubble-level.klederson.com/internal/config"
	"bubble-level.klederson.com/internal/sensor"
	"github.com/rs/zerolog/log"
)

// ErrSurfaceActive is returned when a surface is created while another one
// is still being drawn.
var ErrSurfaceActive = errors.New("surface already active")

// Snapshot is a consistent-enough view of the indicator for display.
type Snapshot struct {
	Position Point
	Geometry Geometry
	Ready    bool // geometry known
	Level    bool
	Last     *sensor.Sample
	Samples  uint64
	Ignored  uint64
	Loop     LoopStats
	Running  bool
	Paused   bool
}

// Offset is the bubble position relative to the ring center.
func (s Snapshot) Offset() Point { return s.Position.Sub(s.Geometry.Center) }

// Indicator ties a gravity source, the mapper and a render loop to the
// lifecycle of a drawable surface.
type Indicator struct {
	source  sensor.Source
	rate    time.Duration
	metrics Metrics

	pos    Position
	geom   GeometryCache
	mapper *Mapper

	mu     sync.Mutex
	loop   *RenderLoop
	subbed bool
	paused bool

	samples atomic.Uint64
	ignored atomic.Uint64
	last    atomic.Pointer[sensor.Sample]
}

// NewIndicator creates an indicator fed by source at rate.
func NewIndicator(source sensor.Source, rate time.Duration, metrics Metrics) (*Indicator, error) {
	ind := &Indicator{
		source:  source,
		rate:    rate,
		metrics: metrics,
	}
	m, err := NewMapper(config.MaxGravity, &ind.pos, &ind.geom)
	if err != nil {
		return nil, err
	}
	ind.mapper = m
	return ind, nil
}

// SurfaceCreated subscribes to the source and starts drawing on s. A
// subscription error is returned, but the loop keeps running so the
// surface still shows the ring.
func (ind *Indicator) SurfaceCreated(s Surface) error {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if ind.loop != nil {
		return ErrSurfaceActive
	}

	ind.loop = NewRenderLoop(s, &ind.pos, &ind.geom, ind.metrics)
	ind.loop.ObserveWith(ind.mapper.Observe)
	ind.loop.Start()
	log.Info().Str("source", ind.source.Name()).Msg("surface created, render loop started")

	if ind.paused {
		return nil
	}
	return ind.subscribeLocked()
}

// SurfaceChanged is called when the surface is resized in place. The
// geometry is fixed per surface instance, so nothing changes.
func (ind *Indicator) SurfaceChanged(width, height int) {}

// SurfaceDestroyed unsubscribes first, then stops the loop and waits for
// it, then forgets the geometry. Calling it twice is harmless.
func (ind *Indicator) SurfaceDestroyed() {
	ind.mu.Lock()
	ind.unsubscribeLocked()
	loop := ind.loop
	ind.loop = nil
	ind.mu.Unlock()

	if loop == nil {
		return
	}
	loop.Stop()
	loop.Wait()
	ind.geom.Reset()
	st := loop.Stats()
	log.Info().Uint64("frames", st.Frames).Uint64("dropped", st.Dropped).Msg("surface destroyed, render loop stopped")
}

// Pause stops sample delivery while keeping the surface drawn.
func (ind *Indicator) Pause() {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	ind.paused = true
	ind.unsubscribeLocked()
}

// Resume restarts sample delivery after Pause.
func (ind *Indicator) Resume() error {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	ind.paused = false
	if ind.loop == nil || ind.subbed {
		return nil
	}
	return ind.subscribeLocked()
}

func (ind *Indicator) subscribeLocked() error {
	if err := ind.source.Subscribe(ind.onSample, ind.rate); err != nil {
		if errors.Is(err, sensor.ErrAlreadySubscribed) {
			ind.subbed = true
			return nil
		}
		return fmt.Errorf("subscribing to %s: %w", ind.source.Name(), err)
	}
	ind.subbed = true
	return nil
}

func (ind *Indicator) unsubscribeLocked() {
	if !ind.subbed {
		return
	}
	ind.subbed = false
	if err := ind.source.Unsubscribe(); err != nil && !errors.Is(err, sensor.ErrNotSubscribed) {
		log.Warn().Err(err).Str("source", ind.source.Name()).Msg("unsubscribe failed")
	}
}

// onSample accepts only gravity readings with two or three components.
func (ind *Indicator) onSample(s sensor.Sample) {
	if s.Type != sensor.TypeGravity || len(s.Values) < 2 || len(s.Values) > 3 {
		ind.ignored.Add(1)
		return
	}
	sample := s
	ind.last.Store(&sample)
	ind.samples.Add(1)
	ind.mapper.OnSample(s.Values[0], s.Values[1])
}

// Snapshot returns the current state for display.
func (ind *Indicator) Snapshot() Snapshot {
	g, ready := ind.geom.Load()
	pos := ind.pos.Load()

	ind.mu.Lock()
	loop := ind.loop
	paused := ind.paused
	ind.mu.Unlock()

	snap := Snapshot{
		Position: pos,
		Geometry: g,
		Ready:    ready,
		Level:    ready && IsLevel(pos, g.Center),
		Last:     ind.last.Load(),
		Samples:  ind.samples.Load(),
		Ignored:  ind.ignored.Load(),
		Paused:   paused,
	}
	if loop != nil {
		snap.Loop = loop.Stats()
		snap.Running = loop.Running()
	}
	return snap
}
