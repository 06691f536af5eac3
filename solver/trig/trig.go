// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trig provides a closed-form IK solver for limbs of exactly three
// bones (two segments), using the law of cosines. The plane that the limb
// bends in is chosen by a [BendMode].
package trig

import (
	"math"

	"cogentcore.org/ik/chain"
	"cogentcore.org/ik/solver"
	"cogentcore.org/ik/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// MinReach is the minimal distance from the first bone to the end,
// so that a fully folded limb still has a direction.
const MinReach = 1e-6

// BendMode determines the normal of the plane that the limb bends in.
type BendMode int32

const (
	// Animation keeps the bend plane of the current (animated) pose.
	Animation BendMode = iota

	// Goal bends the limb toward the BendGoal position.
	Goal

	// Parent keeps the bend plane of the setup pose fixed relative to the
	// root (parent) rotation, such as a pelvis or shoulder.
	Parent

	// Target keeps the bend plane of the setup pose fixed relative to the
	// target rotation.
	Target
)

var bendModeNames = [...]string{"Animation", "Goal", "Parent", "Target"}

func (bm BendMode) String() string {
	if bm >= 0 && int(bm) < len(bendModeNames) {
		return bendModeNames[bm]
	}
	return "BendMode(?)"
}

// BendModeFromString returns the mode with the given name, case sensitive.
func BendModeFromString(s string) (BendMode, bool) {
	for i, n := range bendModeNames {
		if n == s {
			return BendMode(i), true
		}
	}
	return Animation, false
}

// Solver is a trigonometric two-segment solver.
type Solver struct {
	solver.Base

	// BendMode determines the bend plane.
	BendMode BendMode

	// BendGoal is the world position that the limb bends toward in
	// the [Goal] mode.
	BendGoal mgl64.Vec3

	// BendGoalWeight in [0, 1] blends from the animated bend plane toward
	// the bend goal plane in the [Goal] mode.
	BendGoalWeight float64 `default:"1"`

	// MaintainRotationWeight in [0, 1] keeps the world rotation of the last
	// bone as it was before solving, such as a foot aligned to the ground.
	MaintainRotationWeight float64

	// setup bend normal relative to the root and to the last bone
	parentNormal mgl64.Vec3
	targetNormal mgl64.Vec3

	// last valid bend normal
	lastNormal mgl64.Vec3
}

// New returns a new trigonometric solver with default settings.
func New() *Solver {
	s := &Solver{}
	s.Defaults()
	s.BendGoalWeight = 1
	return s
}

// Initialize implements [solver.Solver]. It needs exactly 3 bones with
// non-zero segment lengths.
func (s *Solver) Initialize(c *chain.Chain) error {
	if err := s.InitChain(c, chain.Requirements{MinBones: 3, MaxBones: 3, NonZeroLength: true}); err != nil {
		return err
	}
	p1, p2, p3 := c.Bones[0].Pos, c.Bones[1].Pos, c.Bones[2].Pos
	n, ok := spatial.Normal(p2.Sub(p1).Cross(p3.Sub(p2)))
	if !ok {
		n = spatial.Orthogonal(p2.Sub(p1))
	}
	s.lastNormal = n
	s.parentNormal = c.Root.Rot.Inverse().Rotate(n)
	s.targetNormal = c.Last().Rot.Inverse().Rotate(n)
	return nil
}

// SetChain implements [solver.Solver].
func (s *Solver) SetChain(bones []*chain.Bone, root spatial.Pose) bool {
	return solver.SetChain(s, bones, root)
}

// IncludedAngle returns the angle in radians at the middle joint of a limb
// with the given segment lengths a and b and distance d from the first
// joint to the end. d is clamped to the reachable range.
func IncludedAngle(a, b, d float64) float64 {
	d = mgl64.Clamp(d, max(math.Abs(a-b), MinReach), a+b)
	return math.Acos(mgl64.Clamp((a*a+b*b-d*d)/(2*a*b), -1, 1))
}

// IncludedAngle returns the current angle in radians at the middle joint.
func (s *Solver) IncludedAngle() float64 {
	c := s.Chain()
	if c == nil {
		return 0
	}
	p1, p2, p3 := c.Bones[0].Pos, c.Bones[1].Pos, c.Bones[2].Pos
	return spatial.Angle(p1.Sub(p2), p3.Sub(p2))
}

// BendNormal returns the unit normal of the bend plane for the current
// pose, target and mode, orthogonal to the given unit direction from the
// first bone to the goal. It falls back to the last valid normal when the
// plane is ambiguous.
func (s *Solver) BendNormal(dir mgl64.Vec3) mgl64.Vec3 {
	c := s.Chain()
	var n mgl64.Vec3
	switch s.BendMode {
	case Animation:
		n = s.animNormal()
	case Goal:
		n = s.animNormal()
		bd := spatial.ProjectOnPlane(s.BendGoal.Sub(c.Bones[0].Pos), dir)
		if bd, ok := spatial.Normal(bd); ok {
			gn := bd.Cross(dir)
			n = spatial.Lerp(n, gn, spatial.Clamp01(s.BendGoalWeight))
		}
	case Parent:
		n = c.Root.Rot.Rotate(s.parentNormal)
	case Target:
		n = s.Target().Rot.Rotate(s.targetNormal)
	}
	if n, ok := spatial.Normal(spatial.ProjectOnPlane(n, dir)); ok {
		s.lastNormal = n
		return n
	}
	if n, ok := spatial.Normal(spatial.ProjectOnPlane(s.lastNormal, dir)); ok {
		return n
	}
	return spatial.Orthogonal(dir)
}

// animNormal returns the bend normal of the current pose,
// which is zero for a straight limb.
func (s *Solver) animNormal() mgl64.Vec3 {
	c := s.Chain()
	p1, p2, p3 := c.Bones[0].Pos, c.Bones[1].Pos, c.Bones[2].Pos
	n, _ := spatial.Normal(p2.Sub(p1).Cross(p3.Sub(p2)))
	return n
}

// Update implements [solver.Solver].
func (s *Solver) Update() {
	if !s.Begin() {
		return
	}
	s.Step()
	c := s.Chain()
	b0, b1, b2 := c.Bones[0], c.Bones[1], c.Bones[2]
	endRot := b2.Rot
	p1 := b0.Pos
	a, b := b0.Length, b1.Length

	toGoal := s.GoalPos().Sub(p1)
	dir, ok := spatial.Normal(toGoal)
	if !ok {
		dir = spatial.NormalOr(b2.Pos.Sub(p1), b0.Dir())
	}
	n := s.BendNormal(dir)
	bendDir := dir.Cross(n)

	d := mgl64.Clamp(toGoal.Len(), max(math.Abs(a-b), MinReach), a+b)
	cosA := mgl64.Clamp((a*a+d*d-b*b)/(2*a*d), -1, 1)
	sinA := math.Sqrt(1 - cosA*cosA)
	mid := p1.Add(dir.Mul(a * cosA)).Add(bendDir.Mul(a * sinA))
	end := p1.Add(dir.Mul(d))

	// first bone: aim at the middle, then twist about itself so that
	// the current bend plane matches
	c.RotateBone(0, spatial.FromTo(b1.Pos.Sub(p1), mid.Sub(p1)))
	if cn, ok := spatial.Normal(b1.Pos.Sub(p1).Cross(b2.Pos.Sub(b1.Pos))); ok {
		ax := spatial.NormalOr(mid.Sub(p1), dir)
		c.RotateBone(0, spatial.FromToAbout(spatial.ProjectOnPlane(cn, ax), spatial.ProjectOnPlane(n, ax), ax))
	}
	c.Translate(1, mid.Sub(b1.Pos))

	// second bone: turn about the bend normal onto the end
	c.RotateBone(1, spatial.FromToAbout(b2.Pos.Sub(mid), end.Sub(mid), n))
	b2.Pos = end

	if w := spatial.Clamp01(s.MaintainRotationWeight); w > 0 {
		b2.Rot = spatial.Slerp(b2.Rot, endRot, w)
	}
	s.MatchTargetRot()
	s.Finish("trig", true)
}
