package math

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestQuatFromEulerSingleAxis(t *testing.T) {
	half := math32.Sqrt(0.5)
	tests := []struct {
		name  string
		euler Euler
		want  Quat
	}{
		{"zero", Euler{Order: OrderZYX}, QuatIdentity()},
		{"z90 zyx", Euler{Z: math32.Pi / 2, Order: OrderZYX}, Quat{Z: half, W: half}},
		{"x90 xyz", Euler{X: math32.Pi / 2}, Quat{X: half, W: half}},
		{"y90 yxz", Euler{Y: math32.Pi / 2, Order: OrderYXZ}, Quat{Y: half, W: half}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuatFromEuler(tt.euler)
			assert.InDelta(t, tt.want.X, got.X, 1e-6)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-6)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-6)
			assert.InDelta(t, tt.want.W, got.W, 1e-6)
		})
	}
}

func TestEulerRoundTrip(t *testing.T) {
	orders := []EulerOrder{OrderXYZ, OrderXZY, OrderYZX, OrderYXZ, OrderZXY, OrderZYX}
	for _, order := range orders {
		t.Run(order.String(), func(t *testing.T) {
			in := Euler{X: 0.3, Y: -0.5, Z: 1.1, Order: order}
			out := EulerFromQuat(QuatFromEuler(in), order)
			assert.Equal(t, order, out.Order)
			assert.InDelta(t, in.X, out.X, 1e-5)
			assert.InDelta(t, in.Y, out.Y, 1e-5)
			assert.InDelta(t, in.Z, out.Z, 1e-5)
		})
	}
}

func TestQuatPremultiply(t *testing.T) {
	a := QuatFromEuler(Euler{X: 0.4})
	b := QuatFromEuler(Euler{Y: 0.7})
	assert.Equal(t, a.Mul(b), b.Premultiply(a))

	// Rotations about one axis add up.
	z1 := QuatFromEuler(Euler{Z: 0.25, Order: OrderZYX})
	z2 := QuatFromEuler(Euler{Z: 0.5, Order: OrderZYX})
	e := EulerFromQuat(z2.Premultiply(z1), OrderZYX)
	assert.InDelta(t, 0.75, e.Z, 1e-6)
}

func TestDegToRad(t *testing.T) {
	assert.InDelta(t, math32.Pi, DegToRad(180), 1e-6)
	v := DegToRadVec(Vec3{90, 0, -90})
	assert.InDelta(t, math32.Pi/2, v.X, 1e-6)
	assert.InDelta(t, -math32.Pi/2, v.Z, 1e-6)
}

func TestEulerOrderString(t *testing.T) {
	assert.Equal(t, "ZYX", OrderZYX.String())
	assert.Equal(t, "XYZ", EulerOrder(42).String())
}

func TestQuatSlerp(t *testing.T) {
	a := QuatIdentity()
	b := QuatFromEuler(Euler{Y: 1})

	assert.InDelta(t, 0, a.Slerp(b, 0).Dot(a)-1, 1e-6)
	assert.InDelta(t, 1, a.Slerp(b, 1).Dot(b), 1e-6)

	mid := EulerFromQuat(a.Slerp(b, 0.5), OrderXYZ)
	assert.InDelta(t, 0.5, mid.Y, 1e-5)
}

func TestVec3Lerp(t *testing.T) {
	got := Vec3{0, 0, 0}.Lerp(Vec3{2, 4, -2}, 0.5)
	assert.Equal(t, Vec3{1, 2, -1}, got)
}
