// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package aim provides an IK solver that rotates a chain of bones so that
// a local axis of the last bone, the aim transform, points at the target.
// It is a variant of CCD, and works best with the target at a distance
// from the aim transform greater than that of the aim transform from the
// first bone.
package aim

import (
	"math"

	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/solver"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// Solver is an aim solver.
type Solver struct {
	solver.Base

	// Axis is the local axis of the last bone that is aimed at the target.
	Axis mgl64.Vec3

	// PoleAxis is the local axis of the last bone that is turned about
	// Axis toward PolePos, with PoleWeight.
	PoleAxis mgl64.Vec3

	// PolePos is the world position that PoleAxis is turned toward.
	PolePos mgl64.Vec3

	// PoleWeight in [0, 1] is the weight of the pole.
	PoleWeight float64

	// ClampWeight in [0, 1] limits the rotation toward targets away from
	// the current aim direction: at 0 the rotation is free, and at 1 the
	// aim direction does not move.
	ClampWeight float64 `default:"0.1"`

	// ClampSmoothing is the number of smoothing passes applied to the
	// clamp, in [0, 2].
	ClampSmoothing int `default:"2"`

	// turnAxis is the last unambiguous world rotation axis, used for
	// targets directly behind the aim direction.
	turnAxis mgl64.Vec3
}

// New returns a new aim solver with default settings.
func New() *Solver {
	s := &Solver{}
	s.Defaults()
	s.Axis = spatial.Forward
	s.PoleAxis = spatial.Up
	s.ClampWeight = 0.1
	s.ClampSmoothing = 2
	return s
}

// Initialize implements [solver.Solver]. It needs at least 1 bone,
// the last of which is the aim transform.
func (s *Solver) Initialize(c *chain.Chain) error {
	if err := s.InitChain(c, chain.Requirements{MinBones: 1}); err != nil {
		return err
	}
	s.turnAxis = spatial.Orthogonal(s.AimDir())
	return nil
}

// SetChain implements [solver.Solver].
func (s *Solver) SetChain(bones []*chain.Bone, root spatial.Pose) bool {
	return solver.SetChain(s, bones, root)
}

// AimDir returns the current world direction of the aim axis.
func (s *Solver) AimDir() mgl64.Vec3 {
	last := s.Chain().Last()
	return spatial.NormalOr(last.Rot.Rotate(s.Axis), last.Dir())
}

// AimError returns the angle in radians between the aim direction and
// the direction from the aim transform to the given position.
func (s *Solver) AimError(pos mgl64.Vec3) float64 {
	return spatial.Angle(s.AimDir(), pos.Sub(s.EndEffector()))
}

// ClampedPos returns the target position limited by ClampWeight relative
// to the current aim direction.
func (s *Solver) ClampedPos() mgl64.Vec3 {
	cw := spatial.Clamp01(s.ClampWeight)
	pos := s.Target().Pos
	if cw <= 0 {
		return pos
	}
	org := s.EndEffector()
	dir := s.AimDir()
	to := pos.Sub(org)
	if cw >= 1 {
		return org.Add(dir.Mul(to.Len()))
	}
	dot := 1 - spatial.Angle(dir, to)/math.Pi
	if dot >= 1 {
		return pos
	}
	targetMul := spatial.Clamp01(1 - (cw-dot)/(1-dot))
	mul := spatial.Clamp01(dot / cw)
	for range min(max(s.ClampSmoothing, 0), 2) {
		mul = math.Sin(mul * math.Pi / 2)
	}
	q := spatial.Weighted(s.fromTo(dir, to), mul*targetMul)
	return org.Add(q.Rotate(dir).Mul(to.Len()))
}

// fromTo is [spatial.FromTo] retaining the last turn axis for
// antiparallel directions.
func (s *Solver) fromTo(from, to mgl64.Vec3) mgl64.Quat {
	q := spatial.FromToAbout(from, to, s.turnAxis)
	if ax, ok := spatial.Normal(q.V); ok && math.Abs(q.W) > spatial.Epsilon {
		s.turnAxis = ax
	}
	return q
}

// Update implements [solver.Solver].
func (s *Solver) Update() {
	if !s.Begin() {
		return
	}
	c := s.Chain()
	goal := s.ClampedPos()
	w := s.Weight * spatial.Clamp01(s.Target().PosWeight)
	n := c.Len()
	step := 1 / float64(n)
	tol := s.Tolerance
	converged := false
	for range s.Iterations() {
		s.Step()
		prev := s.AimDir()
		for i := range n - 1 {
			s.rotate(i, goal, step*float64(i+1)*w)
		}
		s.rotate(n-1, goal, w)
		if tol > 0 && (s.AimError(goal) <= tol || spatial.Angle(prev, s.AimDir()) <= tol) {
			converged = true
			break
		}
	}
	s.MatchTargetRot()
	s.Finish("aim", converged)
}

// rotate turns bone i so that the aim direction points more toward
// the goal, and the pole axis toward the pole.
func (s *Solver) rotate(i int, goal mgl64.Vec3, w float64) {
	c := s.Chain()
	w = spatial.Clamp01(w * c.Bones[i].Weight)
	if w <= 0 {
		return
	}
	q := s.fromTo(s.AimDir(), goal.Sub(s.EndEffector()))
	c.RotateBone(i, spatial.Weighted(q, w))

	if pw := spatial.Clamp01(s.PoleWeight); pw > 0 {
		dir := s.AimDir()
		pole := spatial.ProjectOnPlane(c.Last().Rot.Rotate(s.PoleAxis), dir)
		to := spatial.ProjectOnPlane(s.PolePos.Sub(s.EndEffector()), dir)
		c.RotateBone(i, spatial.Weighted(spatial.FromToAbout(pole, to, dir), w*pw))
	}
	if s.UseRotationLimits {
		c.ApplyLimit(i)
	}
}
