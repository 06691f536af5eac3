// Copyright (c) 2019, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spatial

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a position and orientation, either in world space
// or relative to a parent pose.
type Pose struct {

	// position of the origin of the pose
	Pos mgl64.Vec3

	// rotation specified as a Quat
	Rot mgl64.Quat
}

// NewPose returns a new pose with the given position and rotation.
func NewPose(pos mgl64.Vec3, rot mgl64.Quat) Pose {
	return Pose{Pos: pos, Rot: OrIdent(rot)}
}

// Defaults sets defaults only if current values are nil
func (ps *Pose) Defaults() {
	if IsNil(ps.Rot) {
		ps.Rot = mgl64.QuatIdent()
	}
}

// FromRel sets pose from relative values compared to a parent pose
func (ps *Pose) FromRel(rel, par Pose) {
	ps.Rot = par.Rot.Mul(rel.Rot).Normalize()
	ps.Pos = par.Pos.Add(par.Rot.Rotate(rel.Pos))
}

// RelTo returns this pose expressed relative to the given parent pose,
// the inverse of [Pose.FromRel].
func (ps *Pose) RelTo(par Pose) Pose {
	inv := par.Rot.Inverse()
	return Pose{
		Pos: inv.Rotate(ps.Pos.Sub(par.Pos)),
		Rot: inv.Mul(ps.Rot).Normalize(),
	}
}

// Transform returns the given local point in the space of this pose.
func (ps *Pose) Transform(p mgl64.Vec3) mgl64.Vec3 {
	return ps.Pos.Add(ps.Rot.Rotate(p))
}

// InverseTransform returns the given point expressed in the local space of this pose.
func (ps *Pose) InverseTransform(p mgl64.Vec3) mgl64.Vec3 {
	return ps.Rot.Inverse().Rotate(p.Sub(ps.Pos))
}

// ApproxEqual returns whether the two poses are within the given
// distance and angle (radians) of each other.
func (ps *Pose) ApproxEqual(o Pose, dist, angle float64) bool {
	return ps.Pos.Sub(o.Pos).Len() <= dist && RotationAngle(ps.Rot, o.Rot) <= angle
}

func (ps Pose) String() string {
	return fmt.Sprintf("pos: (%.4g, %.4g, %.4g) rot: (%.4g, %.4g, %.4g, %.4g)", ps.Pos[0], ps.Pos[1], ps.Pos[2], ps.Rot.V[0], ps.Rot.V[1], ps.Rot.V[2], ps.Rot.W)
}
