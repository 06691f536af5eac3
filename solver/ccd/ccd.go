// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ccd provides a cyclic coordinate descent (CCD) IK solver.
//
// Each iteration walks the bones from the end of the chain toward the
// root (or in a configured order), rotating each bone by the minimal
// rotation that aligns the direction to the end-effector with the
// direction to the target. A target closer to a bone than the rest of
// the chain can reach may make the chain oscillate around that bone;
// this is expected.
package ccd

import (
	"fmt"

	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/solver"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Solver is a CCD solver.
type Solver struct {
	solver.Base

	// Order is the optional order in which bone indices are rotated in
	// each iteration. By default it is from the bone before the
	// end-effector to the root.
	Order []int

	// order in use
	order []int
}

// New returns a new CCD solver with default settings.
func New() *Solver {
	s := &Solver{}
	s.Defaults()
	return s
}

// Initialize implements [solver.Solver]. It needs at least 2 bones,
// and validates the Order if it is set.
func (s *Solver) Initialize(c *chain.Chain) error {
	if c != nil {
		for _, i := range s.Order {
			if i < 0 || i >= c.Len() {
				return &chain.InvalidChainError{Index: -1, Reason: fmt.Sprintf("order index %d is out of range", i)}
			}
		}
	}
	if err := s.InitChain(c, chain.Requirements{MinBones: 2}); err != nil {
		return err
	}
	s.order = s.order[:0]
	if len(s.Order) > 0 {
		s.order = append(s.order, s.Order...)
		return nil
	}
	for i := c.Len() - 2; i >= 0; i-- {
		s.order = append(s.order, i)
	}
	return nil
}

// SetChain implements [solver.Solver].
func (s *Solver) SetChain(bones []*chain.Bone, root spatial.Pose) bool {
	return solver.SetChain(s, bones, root)
}

// Update implements [solver.Solver].
func (s *Solver) Update() {
	if !s.Begin() {
		return
	}
	c := s.Chain()
	goal := s.GoalPos()
	tol := s.Tolerance
	converged := false
	for range s.Iterations() {
		s.Step()
		prev := c.EndPos()
		for _, i := range s.order {
			s.rotate(i, goal)
		}
		end := c.EndPos()
		if tol > 0 && (end.Sub(goal).Len() <= tol || end.Sub(prev).Len() <= tol) {
			converged = true
			break
		}
	}
	s.MatchTargetRot()
	s.Finish("ccd", converged)
}

// rotate turns bone i toward the goal.
func (s *Solver) rotate(i int, goal mgl64.Vec3) {
	c := s.Chain()
	b := c.Bones[i]
	w := s.BoneWeight(i)
	if w <= 0 {
		return
	}
	q := spatial.FromTo(c.EndPos().Sub(b.Pos), goal.Sub(b.Pos))
	c.RotateBone(i, spatial.Weighted(q, w))
	if s.UseRotationLimits {
		c.ApplyLimit(i)
	}
}
