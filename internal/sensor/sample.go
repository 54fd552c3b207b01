package sensor

import (
	"errors"
	"strings"
	"time"
)

// Type tags what kind of vector a sample carries.
type Type int

const (
	TypeUnknown Type = iota
	TypeGravity
	TypeAccelerometer
)

func (t Type) String() string {
	switch t {
	case TypeGravity:
		return "gravity"
	case TypeAccelerometer:
		return "accelerometer"
	default:
		return "unknown"
	}
}

// ParseType maps a sensor name such as "gravity" or
// "BMI160 Accelerometer Non-wakeup" to a Type.
func ParseType(name string) Type {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "gravity"):
		return TypeGravity
	case strings.Contains(n, "accel"):
		return TypeAccelerometer
	default:
		return TypeUnknown
	}
}

// Sampling periods, matching the usual mobile sensor delay classes.
const (
	RateFastest = time.Duration(0)
	RateGame    = 20 * time.Millisecond
	RateUI      = 66667 * time.Microsecond
	RateNormal  = 200 * time.Millisecond
)

var (
	ErrAlreadySubscribed = errors.New("source already subscribed")
	ErrNotSubscribed     = errors.New("source not subscribed")
	ErrBadPayload        = errors.New("bad sample payload")
)

// Sample is one sensor reading. Values holds x, y, z in m/s².
type Sample struct {
	Type      Type
	Values    []float64
	Timestamp time.Time
}

// Gravity returns a three-axis gravity sample stamped now.
func Gravity(x, y, z float64) Sample {
	return Sample{
		Type:      TypeGravity,
		Values:    []float64{x, y, z},
		Timestamp: time.Now(),
	}
}

// X returns the first component or 0.
func (s Sample) X() float64 { return s.component(0) }

// Y returns the second component or 0.
func (s Sample) Y() float64 { return s.component(1) }

// Z returns the third component or 0.
func (s Sample) Z() float64 { return s.component(2) }

func (s Sample) component(i int) float64 {
	if i < len(s.Values) {
		return s.Values[i]
	}
	return 0
}

// Listener receives samples on the source's own goroutine.
type Listener func(Sample)

// Source delivers samples to a single listener at roughly the requested
// rate until Unsubscribe is called.
type Source interface {
	Subscribe(fn Listener, rate time.Duration) error
	Unsubscribe() error
	Name() string
}
