package canvas

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"bubble-level.klederson.com/internal/level"
)

var (
	// ErrReleased is returned once the surface has been destroyed.
	ErrReleased = level.ErrSurfaceReleased
	// ErrFrameDone is returned when a frame is posted twice.
	ErrFrameDone = errors.New("frame already posted or discarded")
)

// Surface is a terminal-backed drawing surface of cols×rows cells, i.e.
// cols×2·rows pixels. One frame may be locked at a time; posted frames are
// rendered to a string that the UI picks up through View.
type Surface struct {
	cols, rows int
	notify     func()

	ticker   *time.Ticker
	sem      chan struct{}
	released chan struct{}
	once     sync.Once

	raster *Raster
	view   atomic.Pointer[string]
	posted atomic.Uint64
}

// NewSurface creates a surface that hands out at most fps frames per
// second (unpaced when fps <= 0). notify is called after every post.
func NewSurface(cols, rows, fps int, notify func()) *Surface {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	s := &Surface{
		cols:     cols,
		rows:     rows,
		notify:   notify,
		sem:      make(chan struct{}, 1),
		released: make(chan struct{}),
		raster:   NewRaster(cols, rows*2),
	}
	if fps > 0 {
		s.ticker = time.NewTicker(time.Second / time.Duration(fps))
	}
	return s
}

// Size returns the surface size in pixels.
func (s *Surface) Size() (int, int) { return s.cols, s.rows * 2 }

// Cells returns the surface size in terminal cells.
func (s *Surface) Cells() (int, int) { return s.cols, s.rows }

// Lock waits for the next frame slot and takes the frame exclusively.
func (s *Surface) Lock(ctx context.Context) (level.Frame, error) {
	if s.ticker != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.released:
			return nil, ErrReleased
		case <-s.ticker.C:
		}
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.released:
		return nil, ErrReleased
	case s.sem <- struct{}{}:
	}
	if s.Released() {
		<-s.sem
		return nil, ErrReleased
	}
	return &frame{Raster: s.raster, s: s}, nil
}

// Release destroys the surface. Pending and future locks fail with
// ErrReleased.
func (s *Surface) Release() {
	s.once.Do(func() {
		close(s.released)
		if s.ticker != nil {
			s.ticker.Stop()
		}
	})
}

// Released reports whether Release was called.
func (s *Surface) Released() bool {
	select {
	case <-s.released:
		return true
	default:
		return false
	}
}

// View returns the last posted frame, or "" before the first post.
func (s *Surface) View() string {
	if v := s.view.Load(); v != nil {
		return *v
	}
	return ""
}

// Posted returns the number of frames presented so far.
func (s *Surface) Posted() uint64 { return s.posted.Load() }

type frame struct {
	*Raster
	s    *Surface
	done bool
}

func (f *frame) Post() error {
	if f.done {
		return ErrFrameDone
	}
	f.done = true
	defer func() { <-f.s.sem }()

	if f.s.Released() {
		return ErrReleased
	}
	out := f.Raster.String()
	f.s.view.Store(&out)
	f.s.posted.Add(1)
	if f.s.notify != nil {
		f.s.notify()
	}
	return nil
}

func (f *frame) Discard() {
	if f.done {
		return
	}
	f.done = true
	<-f.s.sem
}
