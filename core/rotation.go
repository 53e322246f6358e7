package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Rotation is an axis-angle rotation: a unit axis and an angle in degrees.
// The zero value is the identity rotation; the axis of an identity rotation
// is meaningless and kept at zero.
//
// Rotations are also exchanged in a packed form: a single 3-vector whose
// direction is the axis and whose magnitude is the angle in degrees. The
// packed form is what the curvature decomposition operates on.
type Rotation struct {
	Axis     r3.Vec
	AngleDeg float64
}

// NewRotation builds a rotation about axis by angleDeg. The axis is
// normalised; a zero axis or zero angle yields the identity. A negative
// angle is folded into the axis direction so AngleDeg is always >= 0.
func NewRotation(axis r3.Vec, angleDeg float64) Rotation {
	n := r3.Norm(axis)
	if n == 0 || angleDeg == 0 {
		return Rotation{}
	}
	if angleDeg < 0 {
		angleDeg = -angleDeg
		axis = r3.Scale(-1, axis)
	}
	return Rotation{Axis: r3.Scale(1/n, axis), AngleDeg: angleDeg}
}

// RotationFromPacked unpacks the magnitude-is-angle vector form.
func RotationFromPacked(v r3.Vec) Rotation {
	return NewRotation(v, r3.Norm(v))
}

// Packed returns the packed vector form of r.
func (r Rotation) Packed() r3.Vec {
	return r3.Scale(r.AngleDeg, r.Axis)
}

// IsIdentity reports whether r is the identity rotation.
func (r Rotation) IsIdentity() bool {
	return r.AngleDeg == 0 || (r.Axis == r3.Vec{})
}

// Inverse returns the rotation that undoes r.
func (r Rotation) Inverse() Rotation {
	if r.IsIdentity() {
		return Rotation{}
	}
	return Rotation{Axis: r3.Scale(-1, r.Axis), AngleDeg: r.AngleDeg}
}

// Compose returns the single rotation equivalent to applying first, then
// second. The combination is the half-angle quaternion product expressed
// back in axis-angle form.
func Compose(first, second Rotation) Rotation {
	if first.IsIdentity() {
		return second
	}
	if second.IsIdentity() {
		return first
	}

	alpha := second.AngleDeg * math.Pi / 180 // applied second
	beta := first.AngleDeg * math.Pi / 180   // applied first
	l := second.Axis
	m := first.Axis

	sinA, cosA := math.Sincos(alpha / 2)
	sinB, cosB := math.Sincos(beta / 2)

	cosHalfGamma := cosA*cosB - sinA*sinB*r3.Dot(l, m)
	cosHalfGamma = clamp(cosHalfGamma, -1, 1)
	gamma := 2 * math.Acos(cosHalfGamma)

	sinHalfGamma := math.Sin(gamma / 2)
	if sinHalfGamma < 1e-12 {
		// The two rotations cancel out.
		return Rotation{}
	}

	axis := r3.Scale(1/sinHalfGamma,
		r3.Add(r3.Scale(sinA*cosB, l),
			r3.Add(r3.Scale(cosA*sinB, m),
				r3.Scale(sinA*sinB, r3.Cross(l, m)))))

	return NewRotation(axis, gamma*180/math.Pi)
}

// Rotate rotates v by r using the Rodrigues formula. The identity rotation
// returns v unchanged.
func Rotate(v r3.Vec, r Rotation) r3.Vec {
	if r.IsIdentity() {
		return v
	}
	theta := r.AngleDeg * math.Pi / 180
	sinT, cosT := math.Sincos(theta)
	k := r.Axis
	return r3.Add(r3.Scale(cosT, v),
		r3.Add(r3.Scale(sinT, r3.Cross(k, v)),
			r3.Scale(r3.Dot(k, v)*(1-cosT), k)))
}

// RotationToBecome returns the rotation that turns direction a into
// direction b. Both inputs are normalised first; already-aligned vectors
// yield the identity.
//
// The angle is recovered with asin(|a×b|), which cannot distinguish an
// angle theta from 180°−theta: results are only meaningful when the true
// angle is at most 90°. Call sites rely on that narrow-angle behaviour.
func RotationToBecome(a, b r3.Vec) Rotation {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na == 0 || nb == 0 {
		return Rotation{}
	}
	a = r3.Scale(1/na, a)
	b = r3.Scale(1/nb, b)

	cross := r3.Cross(a, b)
	s := r3.Norm(cross)
	if s < 1e-12 {
		return Rotation{}
	}
	angle := math.Asin(clamp(s, -1, 1)) * 180 / math.Pi
	return Rotation{Axis: r3.Scale(1/s, cross), AngleDeg: angle}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
