// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package limits

import (
	"cogentcore.org/ik/spatial"
	"cogentcore.org/ik/spatial/minmax"
	"github.com/go-gl/mathgl/mgl64"
)

// Hinge limits rotation to a single axis. The angle is accumulated
// across calls to Apply, so that Range can extend beyond ±360 degrees,
// e.g., for a wheel that may turn twice in either direction.
type Hinge struct {
	Base

	// Range is the allowed rotation about Axis in degrees,
	// only enforced if UseLimits is on.
	Range minmax.F64

	// UseLimits enforces Range. Without it, the hinge only
	// removes rotation off its axis.
	UseLimits bool

	// angle is the accumulated angle in radians
	angle float64
}

// NewHinge returns a new hinge about the given axis limited to [mn, mx] degrees.
// A zero axis is taken orthogonal to the bone when the limit is initialized.
func NewHinge(axis mgl64.Vec3, mn, mx float64) *Hinge {
	lh := &Hinge{Base: Base{Axis: axis}, UseLimits: true}
	lh.Range.Set(mn, mx)
	return lh
}

func (lh *Hinge) Init(local mgl64.Quat, boneAxis mgl64.Vec3) {
	if lh.Axis.Len() < spatial.Epsilon {
		lh.Axis = spatial.Orthogonal(boneAxis)
	}
	lh.initBase(local, boneAxis)
	lh.angle = 0
}

// SetDefault sets the default local rotation and resets the accumulated angle.
func (lh *Hinge) SetDefault(local mgl64.Quat) {
	lh.Base.SetDefault(local)
	lh.angle = 0
}

// Angle returns the current accumulated hinge angle in degrees.
func (lh *Hinge) Angle() float64 {
	return mgl64.RadToDeg(lh.angle)
}

func (lh *Hinge) Apply(local mgl64.Quat) mgl64.Quat {
	ax := lh.axis()
	tw := spatial.TwistAngle(lh.toDefault(local), ax)
	a := lh.angle + spatial.WrapPi(tw-lh.angle)
	if lh.UseLimits {
		rr := lh.Range.Scaled(mgl64.DegToRad(1))
		a = rr.ClipValue(a)
	}
	lh.angle = a
	return lh.fromDefault(spatial.AxisAngle(ax, a))
}
