package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// Vec2FromSlice reads two components starting at offset.
// Missing components are left zero.
func Vec2FromSlice(s []float64, offset int) Vec2 {
	var v Vec2
	if offset+1 < len(s) {
		v.X, v.Y = float32(s[offset]), float32(s[offset+1])
	}
	return v
}

// Array returns the components as a fixed array.
func (v Vec2) Array() [2]float32 {
	return [2]float32{v.X, v.Y}
}

// Length returns the vector length.
func (v Vec2) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y)
}
