// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spatial provides the float64 vector, quaternion and pose
// helpers shared by the chain, limit and solver packages.
// It works directly on the [mgl64] types, adding the degenerate-case
// handling that IK needs: every function here returns a finite,
// deterministic result for zero-length or antiparallel inputs.
package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector is treated as degenerate.
const Epsilon = 1e-9

// World axes.
var (
	Right   = mgl64.Vec3{1, 0, 0}
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

// Vec3 is a shorthand constructor for [mgl64.Vec3].
func Vec3(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, z}
}

// IsFinite returns whether all components of v are finite.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Normal returns v scaled to unit length. It returns false, and
// a zero vector, if v is shorter than [Epsilon] or not finite.
func Normal(v mgl64.Vec3) (mgl64.Vec3, bool) {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// NormalOr returns v scaled to unit length, or fallback if v is degenerate.
func NormalOr(v, fallback mgl64.Vec3) mgl64.Vec3 {
	if n, ok := Normal(v); ok {
		return n
	}
	return fallback
}

// Orthogonal returns a unit vector orthogonal to v. The result only depends
// on v: it is v crossed with the world axis v is least aligned with.
func Orthogonal(v mgl64.Vec3) mgl64.Vec3 {
	n, ok := Normal(v)
	if !ok {
		return Right
	}
	ax, ay, az := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	other := Right
	switch {
	case ay <= ax && ay <= az:
		other = Up
	case az <= ax && az <= ay:
		other = Forward
	}
	return NormalOr(n.Cross(other), Right)
}

// ProjectOnPlane removes the component of v along the unit plane normal n.
func ProjectOnPlane(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(v.Dot(n)))
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Angle returns the unsigned angle between a and b in radians,
// or 0 if either is degenerate.
func Angle(a, b mgl64.Vec3) float64 {
	if a.Len() < Epsilon || b.Len() < Epsilon {
		return 0
	}
	return math.Atan2(a.Cross(b).Len(), a.Dot(b))
}

// SignedAngle returns the angle from a to b about the given axis,
// in (-π, π], measured in the plane orthogonal to axis.
func SignedAngle(a, b, axis mgl64.Vec3) float64 {
	pa := ProjectOnPlane(a, axis)
	pb := ProjectOnPlane(b, axis)
	if pa.Len() < Epsilon || pb.Len() < Epsilon {
		return 0
	}
	return math.Atan2(pa.Cross(pb).Dot(axis), pa.Dot(pb))
}

// WrapPi wraps the given angle in radians into (-π, π].
func WrapPi(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// Clamp01 clamps v into [0, 1].
func Clamp01(v float64) float64 {
	return mgl64.Clamp(v, 0, 1)
}
