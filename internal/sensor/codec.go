package sensor

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// BinarySampleLen is the size of a packed x,y,z float32 triple.
const BinarySampleLen = 12

// DecodeJSON accepts three payload shapes:
//
//	{"type":"gravity","values":[x,y,z]}
//	{"x":x,"y":y,"z":z}                 (type defaults to gravity)
//	{"gravity Non-wakeup":{"values":[x,y,z]}}   (termux-sensor output)
func DecodeJSON(b []byte) (Sample, error) {
	if !gjson.ValidBytes(b) {
		return Sample{}, fmt.Errorf("%w: invalid json", ErrBadPayload)
	}
	root := gjson.ParseBytes(b)
	if !root.IsObject() {
		return Sample{}, fmt.Errorf("%w: not an object", ErrBadPayload)
	}

	if vals := root.Get("values"); vals.IsArray() {
		typ := TypeGravity
		if t := root.Get("type"); t.Exists() {
			typ = ParseType(t.String())
		}
		return sampleFromArray(typ, vals, root.Get("timestamp"))
	}

	if x, y := root.Get("x"), root.Get("y"); x.Exists() && y.Exists() {
		typ := TypeGravity
		if t := root.Get("type"); t.Exists() {
			typ = ParseType(t.String())
		}
		values := []float64{x.Float(), y.Float()}
		if z := root.Get("z"); z.Exists() {
			values = append(values, z.Float())
		}
		return Sample{Type: typ, Values: values, Timestamp: stamp(root.Get("timestamp"))}, nil
	}

	var (
		out   Sample
		found bool
	)
	root.ForEach(func(key, value gjson.Result) bool {
		vals := value.Get("values")
		if !value.IsObject() || !vals.IsArray() {
			return true
		}
		s, err := sampleFromArray(ParseType(key.String()), vals, value.Get("timestamp"))
		if err != nil {
			return true
		}
		out, found = s, true
		return false
	})
	if !found {
		return Sample{}, fmt.Errorf("%w: no sample values", ErrBadPayload)
	}
	return out, nil
}

func sampleFromArray(typ Type, vals, ts gjson.Result) (Sample, error) {
	arr := vals.Array()
	if len(arr) == 0 {
		return Sample{}, fmt.Errorf("%w: empty values", ErrBadPayload)
	}
	values := make([]float64, len(arr))
	for i, v := range arr {
		if v.Type != gjson.Number {
			return Sample{}, fmt.Errorf("%w: value %d is not a number", ErrBadPayload, i)
		}
		values[i] = v.Float()
	}
	return Sample{Type: typ, Values: values, Timestamp: stamp(ts)}, nil
}

// stamp reads a unix millisecond timestamp, falling back to now.
func stamp(ts gjson.Result) time.Time {
	if ts.Type == gjson.Number {
		return time.UnixMilli(ts.Int())
	}
	return time.Now()
}

// DecodeText parses "x y z" or "x,y,z" as a gravity sample.
func DecodeText(line string) (Sample, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	if len(fields) < 2 || len(fields) > 3 {
		return Sample{}, fmt.Errorf("%w: want 2 or 3 fields, got %d", ErrBadPayload, len(fields))
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		values[i] = v
	}
	return Sample{Type: TypeGravity, Values: values, Timestamp: time.Now()}, nil
}

// DecodeLine tries JSON first, then plain text.
func DecodeLine(line string) (Sample, error) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "{") {
		return DecodeJSON([]byte(line))
	}
	return DecodeText(line)
}

// DecodeBinary reads three little-endian float32 values.
func DecodeBinary(b []byte) (Sample, error) {
	if len(b) < BinarySampleLen {
		return Sample{}, fmt.Errorf("%w: want %d bytes, got %d", ErrBadPayload, BinarySampleLen, len(b))
	}
	values := make([]float64, 3)
	for i := range values {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		values[i] = float64(math.Float32frombits(bits))
	}
	return Sample{Type: TypeGravity, Values: values, Timestamp: time.Now()}, nil
}

// EncodeBinary is the inverse of DecodeBinary.
func EncodeBinary(x, y, z float32) []byte {
	b := make([]byte, BinarySampleLen)
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(x))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(z))
	return b
}
