package canvas

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bubble-level.klederson.com/internal/level"
)

func TestSurface_Size(t *testing.T) {
	s := NewSurface(40, 12, 0, nil)
	if w, h := s.Size(); w != 40 || h != 24 {
		t.Fatalf("size=%dx%d want 40x24", w, h)
	}
	if c, r := s.Cells(); c != 40 || r != 12 {
		t.Fatalf("cells=%dx%d", c, r)
	}
}

func TestSurface_PostPublishes(t *testing.T) {
	var notified atomic.Int32
	s := NewSurface(8, 4, 0, func() { notified.Add(1) })
	if s.View() != "" {
		t.Fatalf("view before first post=%q", s.View())
	}

	f, err := s.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	f.DrawPaint(level.ColorDefault)
	if err := f.Post(); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if notified.Load() != 1 || s.Posted() != 1 {
		t.Fatalf("notified=%d posted=%d", notified.Load(), s.Posted())
	}
	if got := strings.Count(s.View(), "\n"); got != 3 {
		t.Fatalf("view has %d newlines want 3", got)
	}
	if err := f.Post(); !errors.Is(err, ErrFrameDone) {
		t.Fatalf("second Post err=%v", err)
	}
}

func TestSurface_DiscardKeepsView(t *testing.T) {
	var notified atomic.Int32
	s := NewSurface(4, 2, 0, func() { notified.Add(1) })

	f, _ := s.Lock(context.Background())
	f.Post()
	before := s.View()

	f, err := s.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock after post: %v", err)
	}
	f.DrawPaint(level.ColorCorrect)
	f.Discard()
	f.Discard()

	if s.View() != before || notified.Load() != 1 {
		t.Fatalf("discarded frame was published")
	}
	if _, err := s.Lock(context.Background()); err != nil {
		t.Fatalf("Lock after discard: %v", err)
	}
}

func TestSurface_LockIsExclusive(t *testing.T) {
	s := NewSurface(4, 2, 0, nil)
	f, err := s.Lock(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.Lock(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second Lock err=%v want deadline", err)
	}
	f.Discard()
}

func TestSurface_Release(t *testing.T) {
	s := NewSurface(4, 2, 60, nil)
	f, err := s.Lock(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Lock(context.Background())
		done <- err
	}()

	s.Release()
	s.Release()
	if err := f.Post(); !errors.Is(err, ErrReleased) {
		t.Fatalf("Post after release err=%v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, ErrReleased) {
			t.Fatalf("pending Lock err=%v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("pending Lock not woken by Release")
	}
	if _, err := s.Lock(context.Background()); !errors.Is(err, ErrReleased) {
		t.Fatalf("Lock after release err=%v", err)
	}
	if s.View() != "" {
		t.Fatalf("released surface published a frame")
	}
}

func TestSurface_Paced(t *testing.T) {
	s := NewSurface(4, 2, 50, nil)
	defer s.Release()
	start := time.Now()
	for i := 0; i < 3; i++ {
		f, err := s.Lock(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		f.Post()
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("3 frames at 50fps took %v", elapsed)
	}
}

func TestSurface_DrivesRenderLoop(t *testing.T) {
	frames := make(chan struct{}, 1)
	s := NewSurface(50, 25, 0, func() {
		select {
		case frames <- struct{}{}:
		default:
		}
	})
	var (
		pos  level.Position
		geom level.GeometryCache
	)
	loop := level.NewRenderLoop(s, &pos, &geom, level.Metrics{Density: 0.25})
	loop.Start()
	select {
	case <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("no frame posted")
	}
	loop.Stop()
	s.Release()
	loop.Wait()

	g, ok := geom.Load()
	if !ok || g.Center != (level.Point{X: 25, Y: 25}) {
		t.Fatalf("geometry=%+v ready=%v", g, ok)
	}
	if s.View() == "" {
		t.Fatal("empty view after posting")
	}
}

func TestSurface_ReleaseEndsRenderLoop(t *testing.T) {
	s := NewSurface(20, 10, 0, func() {})
	loop := level.NewRenderLoop(s, &level.Position{}, &level.GeometryCache{}, level.Metrics{Density: 0.25})
	loop.Start()
	s.Release()

	done := make(chan struct{})
	go func() {
		loop.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		loop.Stop()
		t.Fatal("render loop kept running on a released surface")
	}
	if loop.Running() {
		t.Fatal("loop reports running after its surface was released")
	}
}
