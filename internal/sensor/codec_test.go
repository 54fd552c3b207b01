package sensor

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestDecodeJSON_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		typ     Type
		values  []float64
	}{
		{"values", `{"type":"gravity","values":[0.5,-1.25,9.7]}`, TypeGravity, []float64{0.5, -1.25, 9.7}},
		{"values default type", `{"values":[1,2,3]}`, TypeGravity, []float64{1, 2, 3}},
		{"accelerometer", `{"type":"accelerometer","values":[1,2,3]}`, TypeAccelerometer, []float64{1, 2, 3}},
		{"xyz", `{"x":0.1,"y":0.2,"z":9.8}`, TypeGravity, []float64{0.1, 0.2, 9.8}},
		{"xy", `{"x":0.1,"y":0.2}`, TypeGravity, []float64{0.1, 0.2}},
		{"termux", `{"gravity  Non-wakeup":{"values":[0.03,0.15,9.8]}}`, TypeGravity, []float64{0.03, 0.15, 9.8}},
		{"termux accel", `{"BMI160 Accelerometer":{"values":[0,0,9.8]}}`, TypeAccelerometer, []float64{0, 0, 9.8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeJSON([]byte(tt.payload))
			if err != nil {
				t.Fatalf("DecodeJSON: %v", err)
			}
			if s.Type != tt.typ {
				t.Fatalf("type=%v want %v", s.Type, tt.typ)
			}
			if len(s.Values) != len(tt.values) {
				t.Fatalf("values=%v want %v", s.Values, tt.values)
			}
			for i := range tt.values {
				if s.Values[i] != tt.values[i] {
					t.Fatalf("values=%v want %v", s.Values, tt.values)
				}
			}
		})
	}
}

func TestDecodeJSON_Timestamp(t *testing.T) {
	s, err := DecodeJSON([]byte(`{"values":[0,0,9.8],"timestamp":1700000000000}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if !s.Timestamp.Equal(time.UnixMilli(1700000000000)) {
		t.Fatalf("timestamp=%v", s.Timestamp)
	}
}

func TestDecodeJSON_Rejects(t *testing.T) {
	for _, p := range []string{
		`not json`,
		`[1,2,3]`,
		`{"values":[]}`,
		`{"values":["a",1,2]}`,
		`{"foo":"bar"}`,
	} {
		if _, err := DecodeJSON([]byte(p)); !errors.Is(err, ErrBadPayload) {
			t.Fatalf("payload %q: err=%v want ErrBadPayload", p, err)
		}
	}
}

func TestDecodeLine(t *testing.T) {
	for _, line := range []string{"0.5 1.5 9.6", "0.5,1.5,9.6", "  0.5\t1.5\t9.6\n", `{"x":0.5,"y":1.5,"z":9.6}`} {
		s, err := DecodeLine(line)
		if err != nil {
			t.Fatalf("line %q: %v", line, err)
		}
		if s.X() != 0.5 || s.Y() != 1.5 || s.Z() != 9.6 {
			t.Fatalf("line %q: got %v", line, s.Values)
		}
	}
	for _, line := range []string{"", "1", "1 2 3 4", "a b c"} {
		if _, err := DecodeLine(line); !errors.Is(err, ErrBadPayload) {
			t.Fatalf("line %q: err=%v want ErrBadPayload", line, err)
		}
	}
}

func TestDecodeBinary(t *testing.T) {
	s, err := DecodeBinary(EncodeBinary(1.5, -0.25, 9.75))
	if err != nil {
		t.Fatalf("DecodeBinary: %v", err)
	}
	if s.Type != TypeGravity || s.X() != 1.5 || s.Y() != -0.25 || s.Z() != 9.75 {
		t.Fatalf("got %+v", s)
	}
	if _, err := DecodeBinary([]byte{1, 2, 3}); !errors.Is(err, ErrBadPayload) {
		t.Fatalf("err=%v want ErrBadPayload", err)
	}
}

func TestSampleComponents_Short(t *testing.T) {
	s := Sample{Values: []float64{1}}
	if s.X() != 1 || s.Y() != 0 || s.Z() != 0 {
		t.Fatalf("got %v %v %v", s.X(), s.Y(), s.Z())
	}
	if math.IsNaN(Gravity(0, 0, 9.8).Z()) {
		t.Fatalf("NaN")
	}
}

func TestThrottle(t *testing.T) {
	var got int
	th := newThrottle(func(Sample) { got++ }, 20*time.Millisecond)
	now := time.Unix(100, 0)
	th.now = func() time.Time { return now }

	th.deliver(Sample{})
	now = now.Add(5 * time.Millisecond)
	if th.deliver(Sample{}) {
		t.Fatalf("sample 5ms after the last one should be dropped")
	}
	now = now.Add(15 * time.Millisecond)
	th.deliver(Sample{})
	if got != 2 {
		t.Fatalf("got=%d want=2", got)
	}
}

func TestThrottle_Fastest(t *testing.T) {
	var got int
	th := newThrottle(func(Sample) { got++ }, RateFastest)
	for i := 0; i < 5; i++ {
		th.deliver(Sample{})
	}
	if got != 5 {
		t.Fatalf("got=%d want=5", got)
	}
}
