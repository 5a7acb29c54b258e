package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromEuler builds the quaternion equivalent of e, honouring e.Order.
func QuatFromEuler(e Euler) Quat {
	c1, s1 := math32.Cos(e.X/2), math32.Sin(e.X/2)
	c2, s2 := math32.Cos(e.Y/2), math32.Sin(e.Y/2)
	c3, s3 := math32.Cos(e.Z/2), math32.Sin(e.Z/2)

	var q Quat
	switch e.Order {
	case OrderYXZ:
		q = Quat{
			X: s1*c2*c3 + c1*s2*s3,
			Y: c1*s2*c3 - s1*c2*s3,
			Z: c1*c2*s3 - s1*s2*c3,
			W: c1*c2*c3 + s1*s2*s3,
		}
	case OrderZXY:
		q = Quat{
			X: s1*c2*c3 - c1*s2*s3,
			Y: c1*s2*c3 + s1*c2*s3,
			Z: c1*c2*s3 + s1*s2*c3,
			W: c1*c2*c3 - s1*s2*s3,
		}
	case OrderZYX:
		q = Quat{
			X: s1*c2*c3 - c1*s2*s3,
			Y: c1*s2*c3 + s1*c2*s3,
			Z: c1*c2*s3 - s1*s2*c3,
			W: c1*c2*c3 + s1*s2*s3,
		}
	case OrderYZX:
		q = Quat{
			X: s1*c2*c3 + c1*s2*s3,
			Y: c1*s2*c3 + s1*c2*s3,
			Z: c1*c2*s3 - s1*s2*c3,
			W: c1*c2*c3 - s1*s2*s3,
		}
	case OrderXZY:
		q = Quat{
			X: s1*c2*c3 - c1*s2*s3,
			Y: c1*s2*c3 - s1*c2*s3,
			Z: c1*c2*s3 + s1*s2*c3,
			W: c1*c2*c3 + s1*s2*s3,
		}
	default: // OrderXYZ
		q = Quat{
			X: s1*c2*c3 + c1*s2*s3,
			Y: c1*s2*c3 - s1*c2*s3,
			Z: c1*c2*s3 + s1*s2*c3,
			W: c1*c2*c3 - s1*s2*s3,
		}
	}
	return q
}

// QuatFromRotationMatrix extracts the rotation of the upper 3x3 of m.
// The upper 3x3 must be unscaled.
func QuatFromRotationMatrix(m Mat4) Quat {
	m11, m12, m13 := m[0], m[4], m[8]
	m21, m22, m23 := m[1], m[5], m[9]
	m31, m32, m33 := m[2], m[6], m[10]

	trace := m11 + m22 + m33
	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1)
		return Quat{
			X: (m32 - m23) * s,
			Y: (m13 - m31) * s,
			Z: (m21 - m12) * s,
			W: 0.25 / s,
		}
	case m11 > m22 && m11 > m33:
		s := 2 * math32.Sqrt(1+m11-m22-m33)
		return Quat{
			X: 0.25 * s,
			Y: (m12 + m21) / s,
			Z: (m13 + m31) / s,
			W: (m32 - m23) / s,
		}
	case m22 > m33:
		s := 2 * math32.Sqrt(1+m22-m11-m33)
		return Quat{
			X: (m12 + m21) / s,
			Y: 0.25 * s,
			Z: (m23 + m32) / s,
			W: (m13 - m31) / s,
		}
	default:
		s := 2 * math32.Sqrt(1+m33-m11-m22)
		return Quat{
			X: (m13 + m31) / s,
			Y: (m23 + m32) / s,
			Z: 0.25 * s,
			W: (m21 - m12) / s,
		}
	}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.Dot(q))
	if length < 0.0001 {
		return QuatIdentity()
	}
	inv := 1 / length
	return Quat{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Mul returns q * other (other is applied first).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Slerp spherically interpolates between q and other along the shorter arc.
func (q Quat) Slerp(other Quat, t float32) Quat {
	dot := q.Dot(other)
	if dot < 0 {
		other = Quat{X: -other.X, Y: -other.Y, Z: -other.Z, W: -other.W}
		dot = -dot
	}

	// Nearly parallel: fall back to a normalised lerp.
	if dot > 0.9995 {
		return Quat{
			X: q.X + t*(other.X-q.X),
			Y: q.Y + t*(other.Y-q.Y),
			Z: q.Z + t*(other.Z-q.Z),
			W: q.W + t*(other.W-q.W),
		}.Normalize()
	}

	theta0 := math32.Acos(dot)
	theta := theta0 * t
	sinTheta := math32.Sin(theta)
	sinTheta0 := math32.Sin(theta0)

	s0 := math32.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quat{
		X: q.X*s0 + other.X*s1,
		Y: q.Y*s0 + other.Y*s1,
		Z: q.Z*s0 + other.Z*s1,
		W: q.W*s0 + other.W*s1,
	}
}

// Premultiply returns p * q.
func (q Quat) Premultiply(p Quat) Quat {
	return p.Mul(q)
}

// Array returns the components in x, y, z, w order.
func (q Quat) Array() [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	return Compose(Vec3{}, q, Vec3{1, 1, 1})
}
