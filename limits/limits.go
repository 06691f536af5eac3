// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package limits provides rotation limits: constraints that clamp the local
// rotation of a bone to an allowed subspace. All limits measure their bounds
// relative to a default local rotation, typically the rotation of the bone in
// its setup pose, and all bounds are given in degrees.
//
// Applying a limit to a rotation that it already allows returns that rotation,
// so Apply(Apply(r)) == Apply(r) for every limit.
package limits

import (
	"math"

	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Limit is the interface for all rotation limits.
type Limit interface {

	// Apply returns the allowed local rotation nearest to the given one.
	Apply(local mgl64.Quat) mgl64.Quat

	// Init is called when the bone owning the limit is set up. It captures
	// the given local rotation as the default rotation, and derives the main
	// axis from the given bone axis (the bone-local direction to its child),
	// unless they have already been set.
	Init(local mgl64.Quat, boneAxis mgl64.Vec3)

	// SetDefault sets the default local rotation that the bounds are
	// measured from, e.g., after the rest pose of the skeleton changes.
	SetDefault(local mgl64.Quat)
}

// Base has the default rotation and axis shared by all limits.
type Base struct {

	// DefaultRot is the local rotation that the bounds are measured from.
	// It is captured from the bone by Init if unset.
	DefaultRot mgl64.Quat

	// Axis is the main axis of the limit, in the default local space.
	Axis mgl64.Vec3
}

// SetDefault sets the default local rotation.
func (lb *Base) SetDefault(local mgl64.Quat) {
	lb.DefaultRot = spatial.OrIdent(local).Normalize()
}

func (lb *Base) initBase(local mgl64.Quat, axis mgl64.Vec3) {
	if spatial.IsNil(lb.DefaultRot) {
		lb.SetDefault(local)
	}
	if lb.Axis.Len() < spatial.Epsilon {
		lb.Axis = spatial.NormalOr(axis, spatial.Forward)
	}
}

// axis returns the unit main axis.
func (lb *Base) axis() mgl64.Vec3 {
	return spatial.NormalOr(lb.Axis, spatial.Forward)
}

// toDefault returns the given local rotation relative to the default rotation.
func (lb *Base) toDefault(local mgl64.Quat) mgl64.Quat {
	return spatial.OrIdent(lb.DefaultRot).Inverse().Mul(local).Normalize()
}

// fromDefault is the inverse of toDefault.
func (lb *Base) fromDefault(r mgl64.Quat) mgl64.Quat {
	return spatial.OrIdent(lb.DefaultRot).Mul(r).Normalize()
}

// limitSwing limits the angle between axis and r applied to axis to lim radians,
// keeping the twist of r about axis.
func limitSwing(r mgl64.Quat, axis mgl64.Vec3, lim float64) mgl64.Quat {
	if lim >= math.Pi {
		return r
	}
	lim = math.Max(lim, 0)
	d := r.Rotate(axis)
	if spatial.Angle(axis, d) <= lim {
		return r
	}
	swing, twist := spatial.SwingTwist(r, axis)
	return spatial.AxisAngle(turnAxis(axis, d, swing), lim).Mul(twist)
}

// limitTwist limits the twist of r about axis to ±lim radians.
func limitTwist(r mgl64.Quat, axis mgl64.Vec3, lim float64) mgl64.Quat {
	if lim >= math.Pi {
		return r
	}
	lim = math.Max(lim, 0)
	a := spatial.TwistAngle(r, axis)
	if math.Abs(a) <= lim {
		return r
	}
	swing, _ := spatial.SwingTwist(r, axis)
	return swing.Mul(spatial.AxisAngle(axis, mgl64.Clamp(a, -lim, lim)))
}

// turnAxis returns the unit axis that swings axis toward d.
// For d opposite to axis, the axis of the given swing is used.
func turnAxis(axis, d mgl64.Vec3, swing mgl64.Quat) mgl64.Vec3 {
	if k, ok := spatial.Normal(axis.Cross(d)); ok {
		return k
	}
	return spatial.NormalOr(spatial.ProjectOnPlane(swing.V, axis), spatial.Orthogonal(axis))
}

// frame returns a deterministic orthonormal basis u, w perpendicular to axis,
// with u × w = axis, used to measure azimuths about axis.
func frame(axis mgl64.Vec3) (u, w mgl64.Vec3) {
	u = spatial.Orthogonal(axis)
	w = axis.Cross(u)
	return
}

// azimuth returns the angle of d about axis in the given frame, in [0, 360) degrees.
func azimuth(d, u, w mgl64.Vec3) float64 {
	a := mgl64.RadToDeg(math.Atan2(d.Dot(w), d.Dot(u)))
	if a < 0 {
		a += 360
	}
	return a
}
