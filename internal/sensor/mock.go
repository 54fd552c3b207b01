package sensor

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

// StandardGravity is the magnitude of the simulated gravity vector.
const StandardGravity = 9.80665

// MockSource simulates a phone being tilted around and then set down
// flat, so demo mode regularly shows both the level and off-level state.
type MockSource struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	phase float64
	noise float64
	start time.Time
}

// NewMockSource creates a demo gravity source with a random phase.
func NewMockSource() *MockSource {
	return &MockSource{
		phase: rand.Float64() * 2 * math.Pi,
		noise: 0.02,
	}
}

func (s *MockSource) Name() string { return "demo" }

// Subscribe starts emitting samples every rate (RateGame when zero).
func (s *MockSource) Subscribe(fn Listener, rate time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadySubscribed
	}
	if rate <= 0 {
		rate = RateGame
	}
	if s.start.IsZero() {
		s.start = time.Now()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, fn, rate, s.done)
	return nil
}

func (s *MockSource) loop(ctx context.Context, fn Listener, rate time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(s.sampleAt(time.Since(s.start).Seconds()))
		}
	}
}

// sampleAt returns the simulated gravity vector t seconds in.
func (s *MockSource) sampleAt(t float64) Sample {
	// Tilt envelope: positive half of a slow sine, flat (level) otherwise.
	env := math.Max(0, math.Sin(t*0.35+s.phase))
	tiltX := 0.45 * env * math.Sin(t*1.3)
	tiltY := 0.35 * env * math.Cos(t*0.9)

	gx := StandardGravity*math.Sin(tiltX) + (rand.Float64()-0.5)*s.noise
	gy := StandardGravity*math.Sin(tiltY) + (rand.Float64()-0.5)*s.noise
	gz := StandardGravity * math.Cos(tiltX) * math.Cos(tiltY)
	return Gravity(gx, gy, gz)
}

// Unsubscribe stops the emitter and waits for its goroutine.
func (s *MockSource) Unsubscribe() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return ErrNotSubscribed
	}
	cancel()
	<-done
	return nil
}
