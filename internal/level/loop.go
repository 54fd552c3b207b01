package level

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// lockRetryDelay spaces out retries after a surface refused a frame.
const lockRetryDelay = 5 * time.Millisecond

var errLockFailed = errors.New("locking surface")

// LoopStats counts what the render loop has done so far.
type LoopStats struct {
	Frames  uint64 // posted
	Dropped uint64 // failed and skipped
}

// RenderLoop repaints a surface as fast as the surface allows until
// stopped. One loop serves one surface lifetime.
type RenderLoop struct {
	surface Surface
	pos     *Position
	geom    *GeometryCache
	metrics Metrics
	observe func(width, height int, m Metrics) (Geometry, bool)

	running atomic.Bool
	frames  atomic.Uint64
	dropped atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	logger zerolog.Logger
}

// NewRenderLoop creates a stopped loop for surface.
func NewRenderLoop(surface Surface, pos *Position, geom *GeometryCache, metrics Metrics) *RenderLoop {
	return &RenderLoop{
		surface: surface,
		pos:     pos,
		geom:    geom,
		metrics: metrics,
		observe: geom.Observe,
		logger:  log.Logger.Sample(&zerolog.BasicSampler{N: 100}),
	}
}

// ObserveWith replaces how the loop derives geometry on the first sized
// frame. It must be called before Start.
func (l *RenderLoop) ObserveWith(fn func(width, height int, m Metrics) (Geometry, bool)) {
	l.observe = fn
}

// Start launches the draw goroutine. Starting a running loop is a no-op.
func (l *RenderLoop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running.Load() {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	l.running.Store(true)
	go l.run(ctx, l.done)
}

// Stop asks the loop to exit after its current iteration. It does not wait;
// use Wait for that.
func (l *RenderLoop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running.Store(false)
	if l.cancel != nil {
		l.cancel()
	}
}

// Wait blocks until the draw goroutine has exited.
func (l *RenderLoop) Wait() {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether the loop has been started and not stopped.
func (l *RenderLoop) Running() bool { return l.running.Load() }

// Stats returns frame counters.
func (l *RenderLoop) Stats() LoopStats {
	return LoopStats{Frames: l.frames.Load(), Dropped: l.dropped.Load()}
}

func (l *RenderLoop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for l.running.Load() {
		err := l.drawFrame(ctx)
		if err == nil {
			l.frames.Add(1)
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrSurfaceReleased) {
			l.running.Store(false)
			log.Warn().Err(err).Uint64("frames", l.frames.Load()).Msg("render loop: surface released, stopping")
			return
		}
		l.dropped.Add(1)
		l.logger.Debug().Err(err).Msg("render loop: frame skipped")
		if errors.Is(err, errLockFailed) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(lockRetryDelay):
			}
		}
	}
}

// drawFrame runs one iteration. Any failure is returned and the frame is
// never presented.
func (l *RenderLoop) drawFrame(ctx context.Context) (err error) {
	frame, err := l.surface.Lock(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", errLockFailed, err)
	}
	if frame == nil {
		return ErrNilFrame
	}

	defer func() {
		if r := recover(); r != nil {
			frame.Discard()
			err = fmt.Errorf("drawing frame: %v", r)
		}
	}()

	g, ready := l.geom.Load()
	if !ready {
		if w, h := l.surface.Size(); w > 0 && h > 0 {
			g, ready = l.observe(w, h, l.metrics)
		}
	}
	Paint(frame, g, ready, l.pos.Load())

	if err := frame.Post(); err != nil {
		return fmt.Errorf("posting frame: %w", err)
	}
	return nil
}
