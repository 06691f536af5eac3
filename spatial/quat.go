// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// IsNil returns true if all values of q are 0 (uninitialized).
func IsNil(q mgl64.Quat) bool {
	return q == mgl64.Quat{}
}

// OrIdent returns q, or the identity if q is uninitialized.
func OrIdent(q mgl64.Quat) mgl64.Quat {
	if IsNil(q) {
		return mgl64.QuatIdent()
	}
	return q
}

// AxisAngle returns the rotation of angle radians about the given axis.
// A degenerate axis gives the identity.
func AxisAngle(axis mgl64.Vec3, angle float64) mgl64.Quat {
	n, ok := Normal(axis)
	if !ok {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, n)
}

// AxisAngleDeg returns the rotation of angle degrees about the given axis.
func AxisAngleDeg(axis mgl64.Vec3, deg float64) mgl64.Quat {
	return AxisAngle(axis, mgl64.DegToRad(deg))
}

// FromTo returns the minimal rotation taking the direction from onto the
// direction to. Antiparallel inputs rotate by π about [Orthogonal](from).
func FromTo(from, to mgl64.Vec3) mgl64.Quat {
	return FromToAbout(from, to, Orthogonal(from))
}

// FromToAbout is [FromTo] with an explicit turn axis for the antiparallel
// case; fallback is made orthogonal to from before use.
func FromToAbout(from, to, fallback mgl64.Vec3) mgl64.Quat {
	f, ok := Normal(from)
	if !ok {
		return mgl64.QuatIdent()
	}
	t, ok := Normal(to)
	if !ok {
		return mgl64.QuatIdent()
	}
	d := f.Dot(t)
	if d >= 1-1e-12 {
		return mgl64.QuatIdent()
	}
	if d <= -1+1e-12 {
		axis, ok := Normal(ProjectOnPlane(fallback, f))
		if !ok {
			axis = Orthogonal(f)
		}
		return mgl64.Quat{W: 0, V: axis}
	}
	// half-way quaternion
	return mgl64.Quat{W: 1 + d, V: f.Cross(t)}.Normalize()
}

// Slerp spherically interpolates from a to b along the shortest path.
// t is clamped to [0, 1].
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// Weighted returns q scaled by weight w in [0, 1]: the identity at 0, q at 1.
func Weighted(q mgl64.Quat, w float64) mgl64.Quat {
	return Slerp(mgl64.QuatIdent(), q, w)
}

// Twist returns the twist component of q about the given unit axis.
func Twist(q mgl64.Quat, axis mgl64.Vec3) mgl64.Quat {
	t := mgl64.Quat{W: q.W, V: axis.Mul(q.V.Dot(axis))}
	if t.Len() < Epsilon {
		return mgl64.QuatIdent()
	}
	return t.Normalize()
}

// SwingTwist decomposes q into q = swing * twist, where twist is a
// rotation about the given unit axis and swing is the minimal rotation
// taking axis onto q applied to axis.
func SwingTwist(q mgl64.Quat, axis mgl64.Vec3) (swing, twist mgl64.Quat) {
	twist = Twist(q, axis)
	swing = q.Mul(twist.Inverse()).Normalize()
	return
}

// TwistAngle returns the signed twist angle of q about the unit axis,
// in (-π, π].
func TwistAngle(q mgl64.Quat, axis mgl64.Vec3) float64 {
	t := Twist(q, axis)
	return WrapPi(2 * math.Atan2(t.V.Dot(axis), t.W))
}

// RotationAngle returns the angle in radians of the rotation taking a to b,
// in [0, π]. q and -q are the same rotation.
func RotationAngle(a, b mgl64.Quat) float64 {
	d := a.Inverse().Mul(b)
	return 2 * math.Atan2(d.V.Len(), math.Abs(d.W))
}

// LookRotation returns the rotation taking the local forward (+Z) axis onto
// forward and the local up (+Y) axis as close as possible to up.
// Degenerate or parallel up vectors fall back to [Orthogonal](forward).
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	f, ok := Normal(forward)
	if !ok {
		return mgl64.QuatIdent()
	}
	u, ok := Normal(ProjectOnPlane(up, f))
	if !ok {
		u = Orthogonal(f)
	}
	r := u.Cross(f)
	m := mgl64.Mat3FromCols(r, u, f)
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}
