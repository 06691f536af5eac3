// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fabrik provides a forward and backward reaching (FABRIK) IK
// solver, which works on bone positions at fixed bone lengths and then
// fits the bone rotations to the solved positions.
package fabrik

import (
	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/solver"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Solver is a FABRIK solver.
type Solver struct {
	solver.Base

	// UpdateLengths re-measures the bone lengths from the current pose on
	// every update, for chains whose bones stretch. Otherwise the lengths
	// captured at initialization are kept.
	UpdateLengths bool

	// anchor is the pinned position of the first bone, if anchored.
	anchor   mgl64.Vec3
	anchored bool

	// solved positions
	pos []mgl64.Vec3
}

// New returns a new FABRIK solver with default settings.
func New() *Solver {
	s := &Solver{}
	s.Defaults()
	return s
}

// Initialize implements [solver.Solver]. It needs at least 2 bones, all
// but the last with a non-zero length.
func (s *Solver) Initialize(c *chain.Chain) error {
	return s.InitChain(c, chain.Requirements{MinBones: 2, NonZeroLength: true})
}

// SetChain implements [solver.Solver].
func (s *Solver) SetChain(bones []*chain.Bone, root spatial.Pose) bool {
	return solver.SetChain(s, bones, root)
}

// SetAnchor pins the first bone at the given position on every update,
// moving the whole chain there first. It is used to attach a child chain
// to the solved end of its parent chain.
func (s *Solver) SetAnchor(pos mgl64.Vec3) {
	s.anchor = pos
	s.anchored = true
}

// ClearAnchor removes the anchor, so that the first bone stays where it is.
func (s *Solver) ClearAnchor() {
	s.anchored = false
}

// Anchor returns the anchor position and whether the chain is anchored.
func (s *Solver) Anchor() (mgl64.Vec3, bool) {
	return s.anchor, s.anchored
}

// Update implements [solver.Solver].
func (s *Solver) Update() {
	if !s.Begin() {
		return
	}
	c := s.Chain()
	if s.UpdateLengths {
		c.MeasureLengths()
	}
	if s.anchored {
		c.Translate(0, s.anchor.Sub(c.Bones[0].Pos))
	}
	root := c.Bones[0].Pos
	goal := s.GoalPos()
	limited := s.UseRotationLimits && c.HasLimits()
	s.pos = c.Positions(s.pos[:0])

	if !limited && goal.Sub(root).Len() >= c.Reach() {
		s.Step()
		s.extend(goal)
		s.apply(false)
		s.MatchTargetRot()
		s.Finish("fabrik", true)
		return
	}
	tol := s.Tolerance
	converged := false
	for range s.Iterations() {
		s.Step()
		s.backward(goal)
		s.forward(root)
		if limited {
			s.apply(true)
			s.pos = c.Positions(s.pos[:0])
		}
		if tol > 0 && s.pos[len(s.pos)-1].Sub(goal).Len() <= tol {
			converged = true
			break
		}
	}
	if !limited {
		s.apply(false)
	}
	s.MatchTargetRot()
	s.Finish("fabrik", converged)
}

// extend places the bones on a straight line from the first bone
// toward an unreachable goal.
func (s *Solver) extend(goal mgl64.Vec3) {
	c := s.Chain()
	dir := spatial.NormalOr(goal.Sub(s.pos[0]), c.Bones[0].Dir())
	for i := 1; i < len(s.pos); i++ {
		s.pos[i] = s.pos[i-1].Add(dir.Mul(c.Bones[i-1].Length))
	}
}

// backward places the last bone at the goal and each preceding bone
// toward its old position at its length from the next one.
func (s *Solver) backward(goal mgl64.Vec3) {
	c := s.Chain()
	n := len(s.pos)
	s.pos[n-1] = goal
	for i := n - 2; i >= 0; i-- {
		d := spatial.NormalOr(s.pos[i].Sub(s.pos[i+1]), c.Bones[i].Dir().Mul(-1))
		s.pos[i] = s.pos[i+1].Add(d.Mul(c.Bones[i].Length))
	}
}

// forward pins the first bone at the root and places each following bone
// toward its backward position at its length from the previous one.
func (s *Solver) forward(root mgl64.Vec3) {
	c := s.Chain()
	s.pos[0] = root
	for i := 1; i < len(s.pos); i++ {
		d := spatial.NormalOr(s.pos[i].Sub(s.pos[i-1]), c.Bones[i-1].Dir())
		s.pos[i] = s.pos[i-1].Add(d.Mul(c.Bones[i-1].Length))
	}
}

// apply fits the bone rotations to the solved positions parent first,
// by the minimal rotation that aims each bone at its solved successor.
// The last bone keeps its local rotation.
func (s *Solver) apply(limit bool) {
	c := s.Chain()
	c.Translate(0, s.pos[0].Sub(c.Bones[0].Pos))
	for i := range len(s.pos) - 1 {
		c.AimBone(i, s.pos[i+1])
		if limit {
			c.ApplyLimit(i)
		}
	}
}
