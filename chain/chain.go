// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chain provides the articulated bone chain that all IK solvers
// operate on: an ordered sequence of bones from parent to child, each with
// a world pose, a fixed length to the next bone, a bending weight and an
// optional rotation limit.
//
// A chain is captured once from a host skeleton with [Chain.Initialize] and
// reused across updates. Adding or removing bones requires a new call to
// Initialize; the hierarchy is never validated per update.
package chain

import (
	"fmt"
	"math"

	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// InvalidChainError is returned by [Chain.Initialize] and solver setup for a
// malformed or too short bone sequence. Index is the offending bone, or -1
// for errors about the chain as a whole.
type InvalidChainError struct {
	Index  int
	Reason string
}

func (e *InvalidChainError) Error() string {
	if e.Index < 0 {
		return "chain: " + e.Reason
	}
	return fmt.Sprintf("chain: bone %d: %s", e.Index, e.Reason)
}

// Requirements are the structural requirements of a solver on its chain.
type Requirements struct {

	// MinBones is the minimum number of bones, at least 1.
	MinBones int

	// MaxBones is the maximum number of bones, or 0 for no maximum.
	MaxBones int

	// NonZeroLength requires every bone but the last to have a
	// non-zero distance to the next one.
	NonZeroLength bool
}

// Chain is an ordered sequence of bones from parent to child.
// Each chain is exclusively owned by one solver at a time.
type Chain struct {

	// Bones in parent to child order.
	Bones []*Bone

	// Root is the world pose of the parent of the first bone,
	// that the local rotation of the first bone is relative to.
	Root spatial.Pose

	// setup poses captured by Initialize
	setup []spatial.Pose

	initialized bool
}

// New returns a new chain of the given bones under the given root pose.
// It must be initialized before use.
func New(root spatial.Pose, bones ...*Bone) *Chain {
	root.Defaults()
	return &Chain{Root: root, Bones: bones}
}

// Initialize validates the chain against the given requirements and captures
// bone lengths and axes, the default rotations of rotation limits, and the
// setup pose that [Chain.Reset] returns to.
func (c *Chain) Initialize(req Requirements) error {
	c.initialized = false
	n := len(c.Bones)
	mn := max(req.MinBones, 1)
	if n < mn {
		return &InvalidChainError{Index: -1, Reason: fmt.Sprintf("has %d bones, needs at least %d", n, mn)}
	}
	if req.MaxBones > 0 && n > req.MaxBones {
		return &InvalidChainError{Index: -1, Reason: fmt.Sprintf("has %d bones, needs at most %d", n, req.MaxBones)}
	}
	c.Root.Defaults()
	seen := make(map[*Bone]bool, n)
	for i, b := range c.Bones {
		if b == nil {
			return &InvalidChainError{Index: i, Reason: "is nil"}
		}
		if seen[b] {
			return &InvalidChainError{Index: i, Reason: "appears more than once"}
		}
		seen[b] = true
		if !spatial.IsFinite(b.Pos) {
			return &InvalidChainError{Index: i, Reason: "position is not finite"}
		}
		b.Rot = spatial.OrIdent(b.Rot)
		if l := b.Rot.Len(); l < spatial.Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
			return &InvalidChainError{Index: i, Reason: "rotation is degenerate"}
		}
		b.Rot = b.Rot.Normalize()
		if b.Weight < 0 || b.Weight > 1 || math.IsNaN(b.Weight) {
			return &InvalidChainError{Index: i, Reason: fmt.Sprintf("weight %g is not in [0, 1]", b.Weight)}
		}
	}
	prevDir := spatial.Forward
	for i, b := range c.Bones {
		if i == n-1 {
			b.Length = 0
			if n == 1 {
				b.Axis = spatial.NormalOr(b.Axis, spatial.Forward)
			} else {
				b.Axis = b.Rot.Inverse().Rotate(prevDir)
			}
			break
		}
		d := c.Bones[i+1].Pos.Sub(b.Pos)
		b.Length = d.Len()
		if b.Length < spatial.Epsilon {
			if req.NonZeroLength {
				return &InvalidChainError{Index: i, Reason: "has zero length"}
			}
			b.Axis = b.Rot.Inverse().Rotate(prevDir)
			continue
		}
		prevDir = d.Mul(1 / b.Length)
		b.Axis = b.Rot.Inverse().Rotate(prevDir)
	}
	for i, b := range c.Bones {
		if b.Limit != nil {
			b.Limit.Init(c.LocalRot(i), b.Axis)
		}
	}
	c.setup = c.Poses()
	c.initialized = true
	return nil
}

// Initialized returns whether the chain has been successfully initialized.
func (c *Chain) Initialized() bool {
	return c != nil && c.initialized
}

// Len returns the number of bones.
func (c *Chain) Len() int {
	return len(c.Bones)
}

// Last returns the last bone, the end-effector.
func (c *Chain) Last() *Bone {
	return c.Bones[len(c.Bones)-1]
}

// EndPos returns the position of the end-effector.
func (c *Chain) EndPos() mgl64.Vec3 {
	return c.Last().Pos
}

// Reach returns the total length of the chain. The length of the last
// bone is not included, as it may start another chain.
func (c *Chain) Reach() float64 {
	r := 0.0
	for _, b := range c.Bones[:max(len(c.Bones)-1, 0)] {
		r += b.Length
	}
	return r
}

// ParentRot returns the world rotation of the parent of bone i.
func (c *Chain) ParentRot(i int) mgl64.Quat {
	if i == 0 {
		return c.Root.Rot
	}
	return c.Bones[i-1].Rot
}

// LocalRot returns the rotation of bone i relative to its parent.
func (c *Chain) LocalRot(i int) mgl64.Quat {
	return c.ParentRot(i).Inverse().Mul(c.Bones[i].Rot).Normalize()
}

// SetLocalRot sets the rotation of bone i relative to its parent,
// carrying all following bones along rigidly.
func (c *Chain) SetLocalRot(i int, local mgl64.Quat) {
	world := c.ParentRot(i).Mul(local).Normalize()
	c.RotateBone(i, world.Mul(c.Bones[i].Rot.Inverse()))
}

// RotateBone applies the world rotation q to bone i about its position,
// carrying all following bones along rigidly.
func (c *Chain) RotateBone(i int, q mgl64.Quat) {
	pivot := c.Bones[i].Pos
	for j := i; j < len(c.Bones); j++ {
		b := c.Bones[j]
		b.Rot = q.Mul(b.Rot).Normalize()
		if j > i {
			b.Pos = pivot.Add(q.Rotate(b.Pos.Sub(pivot)))
		}
	}
}

// Translate moves bone i and all following bones by d.
func (c *Chain) Translate(i int, d mgl64.Vec3) {
	for j := i; j < len(c.Bones); j++ {
		c.Bones[j].Pos = c.Bones[j].Pos.Add(d)
	}
}

// AimBone rotates bone i by the minimal rotation that points it at the given
// position, then moves the following bones so that the next bone is exactly
// Length away in that direction. Bone i must not be the last bone.
func (c *Chain) AimBone(i int, pos mgl64.Vec3) {
	b := c.Bones[i]
	next := c.Bones[i+1]
	c.RotateBone(i, spatial.FromTo(next.Pos.Sub(b.Pos), pos.Sub(b.Pos)))
	dir := spatial.NormalOr(next.Pos.Sub(b.Pos), b.Dir())
	c.Translate(i+1, b.Pos.Add(dir.Mul(b.Length)).Sub(next.Pos))
}

// ApplyLimit applies the rotation limit of bone i, if any,
// carrying all following bones along rigidly.
func (c *Chain) ApplyLimit(i int) {
	b := c.Bones[i]
	if b.Limit == nil {
		return
	}
	c.SetLocalRot(i, b.Limit.Apply(c.LocalRot(i)))
}

// ApplyLimits applies all rotation limits from parent to child.
func (c *Chain) ApplyLimits() {
	for i := range c.Bones {
		c.ApplyLimit(i)
	}
}

// HasLimits returns whether any bone has a rotation limit.
func (c *Chain) HasLimits() bool {
	for _, b := range c.Bones {
		if b.Limit != nil {
			return true
		}
	}
	return false
}

// MeasureLengths updates the bone lengths from the current positions,
// for chains whose bones are allowed to stretch between updates.
func (c *Chain) MeasureLengths() {
	for i, b := range c.Bones {
		if i == len(c.Bones)-1 {
			b.Length = 0
			break
		}
		b.Length = c.Bones[i+1].Pos.Sub(b.Pos).Len()
	}
}

// Poses returns the current world poses of all bones.
func (c *Chain) Poses() []spatial.Pose {
	ps := make([]spatial.Pose, len(c.Bones))
	for i, b := range c.Bones {
		ps[i] = b.Pose()
	}
	return ps
}

// SetPoses sets the world poses of the bones from the given poses,
// which must have one pose per bone.
func (c *Chain) SetPoses(ps []spatial.Pose) {
	for i, b := range c.Bones {
		b.SetPose(ps[i])
	}
}

// Reset returns all bones to the pose captured by [Chain.Initialize].
func (c *Chain) Reset() {
	if len(c.setup) != len(c.Bones) {
		return
	}
	c.SetPoses(c.setup)
}

// Positions appends the bone positions to the given slice and returns it.
func (c *Chain) Positions(ps []mgl64.Vec3) []mgl64.Vec3 {
	for _, b := range c.Bones {
		ps = append(ps, b.Pos)
	}
	return ps
}
