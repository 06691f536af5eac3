// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain

import (
	"cogentcore.org/ik/limits"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Bone is one rigid segment of a [Chain], from its own position
// to the position of the next bone.
type Bone struct {

	// Name is an optional name, e.g., of the skeleton joint the bone reads from.
	Name string

	// Pos is the world position of the bone.
	Pos mgl64.Vec3

	// Rot is the world rotation of the bone.
	Rot mgl64.Quat

	// Length is the distance to the next bone, measured by [Chain.Initialize].
	// It is 0 for the last bone.
	Length float64

	// Weight in [0, 1] scales the contribution of this bone to bending.
	Weight float64

	// Limit is an optional rotation limit on the local rotation of the bone.
	Limit limits.Limit

	// Axis is the bone-local unit direction to the next bone,
	// captured by [Chain.Initialize]. For the last bone it is the
	// direction from the previous bone.
	Axis mgl64.Vec3
}

// NewBone returns a new bone with the given name and world pose and a weight of 1.
func NewBone(name string, pos mgl64.Vec3, rot mgl64.Quat) *Bone {
	return &Bone{Name: name, Pos: pos, Rot: spatial.OrIdent(rot), Weight: 1}
}

// Pose returns the world pose of the bone.
func (b *Bone) Pose() spatial.Pose {
	return spatial.Pose{Pos: b.Pos, Rot: b.Rot}
}

// SetPose sets the world pose of the bone, without moving any other bone.
func (b *Bone) SetPose(ps spatial.Pose) {
	b.Pos = ps.Pos
	b.Rot = spatial.OrIdent(ps.Rot)
}

// Dir returns the current world direction of the bone axis.
func (b *Bone) Dir() mgl64.Vec3 {
	return b.Rot.Rotate(b.Axis)
}

// Target is what a solver tries to match the end of its chain to.
// It is supplied by value on every update and never owned by the solver.
type Target struct {

	// Pos is the world position of the target.
	Pos mgl64.Vec3

	// Rot is the world rotation of the target.
	Rot mgl64.Quat

	// PosWeight in [0, 1] blends between the current end position and Pos.
	PosWeight float64

	// RotWeight in [0, 1] blends between the current end rotation and Rot,
	// for solvers that match rotation.
	RotWeight float64
}

// NewTarget returns a target at the given position with full position weight.
func NewTarget(pos mgl64.Vec3) Target {
	return Target{Pos: pos, Rot: mgl64.QuatIdent(), PosWeight: 1}
}
