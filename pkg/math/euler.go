package math

import "github.com/chewxy/math32"

// EulerOrder names the axis sequence of an Euler rotation.
type EulerOrder uint8

// Supported rotation orders. The zero value is XYZ.
const (
	OrderXYZ EulerOrder = iota
	OrderXZY
	OrderYZX
	OrderYXZ
	OrderZXY
	OrderZYX
)

var orderNames = [...]string{"XYZ", "XZY", "YZX", "YXZ", "ZXY", "ZYX"}

func (o EulerOrder) String() string {
	if int(o) < len(orderNames) {
		return orderNames[o]
	}
	return "XYZ"
}

// Euler is a rotation in radians about X, Y and Z applied in Order.
type Euler struct {
	X, Y, Z float32
	Order   EulerOrder
}

// EulerFromVec3 wraps v as an Euler with the given order.
func EulerFromVec3(v Vec3, order EulerOrder) Euler {
	return Euler{X: v.X, Y: v.Y, Z: v.Z, Order: order}
}

// Vec3 returns the three angles.
func (e Euler) Vec3() Vec3 {
	return Vec3{e.X, e.Y, e.Z}
}

// EulerFromRotationMatrix decomposes the unscaled upper 3x3 of m into
// angles for the given order.
func EulerFromRotationMatrix(m Mat4, order EulerOrder) Euler {
	m11, m12, m13 := m[0], m[4], m[8]
	m21, m22, m23 := m[1], m[5], m[9]
	m31, m32, m33 := m[2], m[6], m[10]

	const gimbal = 0.9999999
	e := Euler{Order: order}

	switch order {
	case OrderYXZ:
		e.X = math32.Asin(-clamp(m23))
		if math32.Abs(m23) < gimbal {
			e.Y = math32.Atan2(m13, m33)
			e.Z = math32.Atan2(m21, m22)
		} else {
			e.Y = math32.Atan2(-m31, m11)
		}
	case OrderZXY:
		e.X = math32.Asin(clamp(m32))
		if math32.Abs(m32) < gimbal {
			e.Y = math32.Atan2(-m31, m33)
			e.Z = math32.Atan2(-m12, m22)
		} else {
			e.Z = math32.Atan2(m21, m11)
		}
	case OrderZYX:
		e.Y = math32.Asin(-clamp(m31))
		if math32.Abs(m31) < gimbal {
			e.X = math32.Atan2(m32, m33)
			e.Z = math32.Atan2(m21, m11)
		} else {
			e.Z = math32.Atan2(-m12, m22)
		}
	case OrderYZX:
		e.Z = math32.Asin(clamp(m21))
		if math32.Abs(m21) < gimbal {
			e.X = math32.Atan2(-m23, m22)
			e.Y = math32.Atan2(-m31, m11)
		} else {
			e.Y = math32.Atan2(m13, m33)
		}
	case OrderXZY:
		e.Z = math32.Asin(-clamp(m12))
		if math32.Abs(m12) < gimbal {
			e.X = math32.Atan2(m32, m22)
			e.Y = math32.Atan2(m13, m11)
		} else {
			e.X = math32.Atan2(-m23, m33)
		}
	default:
		e.Y = math32.Asin(clamp(m13))
		if math32.Abs(m13) < gimbal {
			e.X = math32.Atan2(-m23, m33)
			e.Z = math32.Atan2(-m12, m11)
		} else {
			e.X = math32.Atan2(m32, m22)
		}
	}
	return e
}

// EulerFromQuat converts q into angles for the given order.
func EulerFromQuat(q Quat, order EulerOrder) Euler {
	return EulerFromRotationMatrix(q.ToMat4(), order)
}

func clamp(v float32) float32 {
	return math32.Max(-1, math32.Min(1, v))
}
