package fbx

import (
	"strconv"
	"strings"

	fmath "github.com/Faultbox/fbxscene/pkg/math"
)

// ParseFloatList parses a comma-separated list of numbers as written by
// the text dialect. Empty fields are skipped; malformed fields decode as 0.
func ParseFloatList(s string) []float64 {
	fields := strings.Split(s, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}

// ParseIntList parses a comma-separated list of integers.
func ParseIntList(s string) []int64 {
	fields := strings.Split(s, ",")
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			fl, ferr := strconv.ParseFloat(f, 64)
			if ferr == nil {
				n = int64(fl)
			}
		}
		out = append(out, n)
	}
	return out
}

// Float64s decodes v as a float list. Numeric arrays are widened, scalars
// become one-element lists and strings are parsed as comma-separated text.
func (v Value) Float64s() []float64 {
	switch a := v.Inner().v.(type) {
	case []float64:
		return a
	case []float32:
		out := make([]float64, len(a))
		for i, f := range a {
			out[i] = float64(f)
		}
		return out
	case []int32:
		out := make([]float64, len(a))
		for i, n := range a {
			out[i] = float64(n)
		}
		return out
	case []int64:
		out := make([]float64, len(a))
		for i, n := range a {
			out[i] = float64(n)
		}
		return out
	case []bool:
		out := make([]float64, len(a))
		for i, b := range a {
			if b {
				out[i] = 1
			}
		}
		return out
	case string:
		return ParseFloatList(a)
	}
	if f, ok := v.Float(); ok {
		return []float64{f}
	}
	return nil
}

// Int64s decodes v as an integer list.
func (v Value) Int64s() []int64 {
	switch a := v.Inner().v.(type) {
	case []int64:
		return a
	case []int32:
		out := make([]int64, len(a))
		for i, n := range a {
			out[i] = int64(n)
		}
		return out
	case []float32, []float64, []bool:
		fs := v.Float64s()
		out := make([]int64, len(fs))
		for i, f := range fs {
			out[i] = int64(f)
		}
		return out
	case string:
		return ParseIntList(a)
	}
	if n, ok := v.Int(); ok {
		return []int64{n}
	}
	return nil
}

// Ints decodes v as a list of machine ints, convenient for indexing.
func (v Value) Ints() []int {
	src := v.Int64s()
	out := make([]int, len(src))
	for i, n := range src {
		out[i] = int(n)
	}
	return out
}

// Float decodes a numeric scalar. Arrays yield their first element.
func (v Value) Float() (float64, bool) {
	switch x := v.Inner().v.(type) {
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case []float64, []float32, []int32, []int64, []bool:
		if fs := v.Float64s(); len(fs) > 0 {
			return fs[0], true
		}
	}
	return 0, false
}

// Int decodes an integer scalar. Floats are truncated.
func (v Value) Int() (int64, bool) {
	switch x := v.Inner().v.(type) {
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return n, true
		}
	}
	f, ok := v.Float()
	return int64(f), ok
}

// Text returns the string held by v or by the typed property it wraps.
func (v Value) Text() (string, bool) {
	s, ok := v.Inner().v.(string)
	return s, ok
}

// Vec3 decodes the first three components of v.
func (v Value) Vec3() (fmath.Vec3, bool) {
	fs := v.Float64s()
	if len(fs) < 3 {
		return fmath.Vec3{}, false
	}
	return fmath.Vec3FromSlice(fs, 0), true
}

// Color decodes an RGB triple. Values are kept in the 0..1 range used by FBX.
func (v Value) Color() (fmath.Vec3, bool) {
	return v.Vec3()
}

// Mat4 decodes 16 column-major values.
func (v Value) Mat4() (fmath.Mat4, bool) {
	fs := v.Float64s()
	if len(fs) < 16 {
		return fmath.Identity(), false
	}
	return fmath.Mat4FromSlice(fs), true
}
