package level

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitFrames(t *testing.T, s *fakeSurface, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for len(s.snapshot()) < n {
		if time.Now().After(deadline) {
			t.Fatalf("only %d frames handed out, want %d", len(s.snapshot()), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRenderLoop_SurvivesFailures(t *testing.T) {
	surface := &fakeSurface{w: 1000, h: 2000, lockErrs: 3, nilFirst: true, panicN: 2, max: 10}
	var (
		pos  Position
		geom GeometryCache
	)
	loop := NewRenderLoop(surface, &pos, &geom, Metrics{Density: 1})
	loop.Start()
	if !loop.Running() {
		t.Fatalf("loop not running after Start")
	}
	waitFrames(t, surface, 10)
	loop.Stop()
	loop.Wait()

	if loop.Running() {
		t.Fatalf("loop running after Stop")
	}
	st := loop.Stats()
	if st.Frames != 8 || st.Dropped != 6 {
		t.Fatalf("stats=%+v want 8 frames, 6 dropped", st)
	}

	frames := surface.snapshot()
	for i, f := range frames {
		panicked := i < 2
		if panicked && (!f.discarded || f.posted) {
			t.Fatalf("frame %d: panicked frame posted=%v discarded=%v", i, f.posted, f.discarded)
		}
		if !panicked && (!f.posted || f.discarded) {
			t.Fatalf("frame %d: posted=%v discarded=%v", i, f.posted, f.discarded)
		}
	}

	g, ok := geom.Load()
	if !ok || g.Center != (Point{500, 1000}) {
		t.Fatalf("geometry=%+v ready=%v", g, ok)
	}
}

func TestRenderLoop_NoGeometryWhileSizeUnknown(t *testing.T) {
	surface := &fakeSurface{max: 3}
	var (
		pos  Position
		geom GeometryCache
	)
	loop := NewRenderLoop(surface, &pos, &geom, Metrics{Density: 1})
	loop.Start()
	waitFrames(t, surface, 3)
	loop.Stop()
	loop.Wait()

	if _, ok := geom.Load(); ok {
		t.Fatalf("geometry derived from a zero-sized surface")
	}
	for _, f := range surface.snapshot() {
		if len(f.ops) != 1 || f.ops[0].kind != "paint" {
			t.Fatalf("ops=%+v want background only", f.ops)
		}
	}
}

func TestRenderLoop_DrawsLatestPosition(t *testing.T) {
	surface := &fakeSurface{w: 1000, h: 2000, max: 1}
	var (
		pos  Position
		geom GeometryCache
	)
	pos.Store(Point{600, 1000})
	loop := NewRenderLoop(surface, &pos, &geom, Metrics{Density: 1})
	loop.Start()
	waitFrames(t, surface, 1)
	loop.Stop()
	loop.Wait()

	f := surface.snapshot()[0]
	bubble := f.ops[3]
	if bubble.kind != "circle" || bubble.args[0] != 600 || bubble.args[1] != 1000 {
		t.Fatalf("bubble op=%+v", bubble)
	}
	if bubble.color != ColorDefault {
		t.Fatalf("off-center bubble color=%v", bubble.color)
	}
}

func TestRenderLoop_PostFailureCountsAsDropped(t *testing.T) {
	surface := &postFailSurface{fakeSurface: fakeSurface{w: 100, h: 100, max: 2}}
	var (
		pos  Position
		geom GeometryCache
	)
	loop := NewRenderLoop(surface, &pos, &geom, Metrics{Density: 1})
	loop.Start()
	waitFrames(t, &surface.fakeSurface, 2)
	loop.Stop()
	loop.Wait()
	if st := loop.Stats(); st.Frames != 0 || st.Dropped != 2 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestRenderLoop_WaitBeforeStart(t *testing.T) {
	loop := NewRenderLoop(&fakeSurface{}, &Position{}, &GeometryCache{}, Metrics{Density: 1})
	loop.Wait()
	loop.Stop()
}

// postFailSurface hands out frames whose Post always fails.
type postFailSurface struct {
	fakeSurface
}

func (s *postFailSurface) Lock(ctx context.Context) (Frame, error) {
	f, err := s.fakeSurface.Lock(ctx)
	if err != nil || f == nil {
		return f, err
	}
	f.(*recorder).postErr = errors.New("surface gone")
	return f, nil
}

func TestRenderLoop_StopsOnReleasedSurface(t *testing.T) {
	surface := &releasingSurface{fakeSurface: fakeSurface{w: 100, h: 100}, after: 3}
	loop := NewRenderLoop(surface, &Position{}, &GeometryCache{}, Metrics{Density: 1})
	loop.Start()

	done := make(chan struct{})
	go func() {
		loop.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		loop.Stop()
		t.Fatalf("loop still running after the surface was released")
	}

	if loop.Running() {
		t.Fatalf("Running()=true after release")
	}
	if st := loop.Stats(); st.Frames != 3 || st.Dropped != 0 {
		t.Fatalf("stats=%+v want 3 frames, 0 dropped", st)
	}
	if n := surface.refusedCount(); n != 1 {
		t.Fatalf("locked a released surface %d times", n)
	}
}

func TestRenderLoop_PacesLockRetries(t *testing.T) {
	const budget = 1 << 20
	surface := &fakeSurface{w: 100, h: 100, lockErrs: budget}
	loop := NewRenderLoop(surface, &Position{}, &GeometryCache{}, Metrics{Density: 1})
	loop.Start()
	time.Sleep(50 * time.Millisecond)
	loop.Stop()
	loop.Wait()

	surface.mu.Lock()
	attempts := budget - surface.lockErrs
	surface.mu.Unlock()
	if attempts == 0 || attempts > 50 {
		t.Fatalf("%d lock attempts in 50ms", attempts)
	}
	// the attempt in flight at Stop is not counted
	if st := loop.Stats(); st.Dropped+1 < uint64(attempts) || st.Dropped > uint64(attempts) {
		t.Fatalf("dropped=%d after %d attempts", st.Dropped, attempts)
	}
}

// releasingSurface hands out after frames, then reports it is gone.
type releasingSurface struct {
	fakeSurface
	after   int
	refused int
}

func (s *releasingSurface) Lock(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	if len(s.frames) >= s.after {
		s.refused++
		s.mu.Unlock()
		return nil, ErrSurfaceReleased
	}
	s.mu.Unlock()
	return s.fakeSurface.Lock(ctx)
}

func (s *releasingSurface) refusedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refused
}
