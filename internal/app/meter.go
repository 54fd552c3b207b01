package app

import "time"

// FrameMeter measures the presented frame rate over a sliding window.
type FrameMeter struct {
	window time.Duration
	stamps []time.Time
}

// NewFrameMeter creates a meter averaging over window.
func NewFrameMeter(window time.Duration) *FrameMeter {
	if window <= 0 {
		window = time.Second
	}
	return &FrameMeter{window: window}
}

// Mark records a frame presented at t.
func (m *FrameMeter) Mark(t time.Time) {
	m.stamps = append(m.stamps, t)
	m.trim(t)
}

// FPS returns frames per second over the window ending at now.
func (m *FrameMeter) FPS(now time.Time) float64 {
	m.trim(now)
	return float64(len(m.stamps)) / m.window.Seconds()
}

// Reset forgets all marks.
func (m *FrameMeter) Reset() {
	m.stamps = m.stamps[:0]
}

func (m *FrameMeter) trim(now time.Time) {
	cutoff := now.Add(-m.window)
	i := 0
	for i < len(m.stamps) && !m.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		m.stamps = append(m.stamps[:0], m.stamps[i:]...)
	}
}
